package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"scrollreveal/pkg/aos"
	"scrollreveal/pkg/html"
	"scrollreveal/pkg/scenario"
)

// report prints a result's timeline and any failed expectations.
func report(out io.Writer, res *scenario.Result) error {
	fmt.Fprintf(out, "== %s\n", res.Name)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tSTEP\tELEMENT\tCHANGE\tSCROLLY")
	for _, ev := range res.Timeline {
		change := ev.Transition.From.String() + " -> " + ev.Transition.To.String()
		if ev.Transition.Retired {
			change += " (retired)"
		}
		fmt.Fprintf(tw, "%v\t%d\t%s\t%s\t%.0f\n", ev.At, ev.Step, describe(ev.Transition.Node), change, ev.Transition.ScrollY)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "elements %d live, %d active, %d retired; %d passes over %v\n",
		res.Stats.Live, res.Stats.Active, res.Stats.Retired, res.Stats.Passes, res.Elapsed)
	if res.Errors != nil {
		fmt.Fprintf(out, "page errors: %v\n", res.Errors)
	}
	for _, f := range res.Failures {
		fmt.Fprintf(out, "FAIL %s\n", f)
	}
	return nil
}

// describe renders an element as a short selector such as div#hero.card.
func describe(n *html.Node) string {
	if n == nil {
		return "?"
	}
	var sb strings.Builder
	sb.WriteString(n.TagName)
	if id, ok := n.GetAttribute("id"); ok && id != "" {
		sb.WriteString("#" + id)
	}
	for _, c := range n.Classes() {
		if c != aos.ActiveClass {
			sb.WriteString("." + c)
		}
	}
	if anim, ok := n.GetAttribute(aos.AttrAnimation); ok && anim != "" {
		sb.WriteString("[" + anim + "]")
	}
	return sb.String()
}
