package js

import (
	"strings"
	"testing"
)

func TestQuerySelector(t *testing.T) {
	runScript(t, `<div><p class="a">first</p><p class="b">second</p><p class="b">third</p></div>`, `
		var el = document.querySelector(".b");
		if (el === null) throw new Error("not found");
		if (el.textContent !== "second") throw new Error("should return the first match: " + el.textContent);
		if (document.querySelector("#none") !== null) throw new Error("missing element should be null");
	`)
}

func TestQuerySelectorAll(t *testing.T) {
	runScript(t, `<p>a</p><div data-aos="fade">b</div><span data-aos="zoom-in">c</span><em>d</em>`, `
		if (document.querySelectorAll("p, span").length !== 2) throw new Error("comma group");
		var marked = document.querySelectorAll("[data-aos]");
		if (marked.length !== 2) throw new Error("[data-aos]: " + marked.length);
		if (marked[0].tagName !== "DIV" || marked[1].tagName !== "SPAN") throw new Error("document order");
		if (document.querySelectorAll('[data-aos="zoom-in"]').length !== 1) throw new Error("attribute value");
		if (document.querySelectorAll('[data-aos^="fa"]').length !== 1) throw new Error("attribute prefix");
	`)
}

func TestQuerySelectorCombinators(t *testing.T) {
	runScript(t, `<section id="s"><div><b class="x">deep</b></div><b class="x">direct</b></section>`, `
		if (document.querySelectorAll("#s .x").length !== 2) throw new Error("descendant");
		var direct = document.querySelectorAll("#s > .x");
		if (direct.length !== 1 || direct[0].textContent !== "direct") throw new Error("child combinator");
	`)
}

func TestElementScopedQueries(t *testing.T) {
	runScript(t, `<div id="scope"><span class="a">inside</span><span class="a">also</span></div><span class="a">outside</span>`, `
		var scope = document.getElementById("scope");
		if (scope.querySelector(".a").textContent !== "inside") throw new Error("querySelector scope");
		if (scope.querySelectorAll(".a").length !== 2) throw new Error("querySelectorAll scope");
		if (scope.querySelector("#scope") !== null) throw new Error("scope root must not match itself");
	`)
}

func TestMatchesAndClosest(t *testing.T) {
	runScript(t, `<div id="trigger" class="hero"><p><span id="leaf" data-aos="fade">x</span></p></div>`, `
		var leaf = document.getElementById("leaf");
		if (!leaf.matches("[data-aos]")) throw new Error("matches attribute");
		if (leaf.matches(".hero")) throw new Error("matches should test the element only");
		if (leaf.closest(".hero").id !== "trigger") throw new Error("closest ancestor");
		if (leaf.closest("span") !== leaf) throw new Error("closest includes the element");
		if (leaf.closest("section") !== null) throw new Error("no match should be null");
	`)
}

func TestInvalidSelectorThrows(t *testing.T) {
	win := newWindow(t, `<div></div>`)
	engine := New(win, WithLogger(quietLogger()))
	_, err := engine.Run(`document.querySelector("[data-aos")`)
	if err == nil || !strings.Contains(err.Error(), "is not a valid selector") {
		t.Errorf("expected a selector error, got %v", err)
	}
	if _, err := engine.Run(`document.querySelectorAll()`); err == nil {
		t.Error("expected an error for a missing argument")
	}
}
