package js

import (
	"strings"
	"testing"

	"scrollreveal/pkg/aos"
)

func TestClassList(t *testing.T) {
	tests := []struct {
		name   string
		class  string
		script string
		want   string
	}{
		{"add", "a", `el.classList.add("b", "c")`, "a b c"},
		{"add existing", "a b", `el.classList.add("a")`, "a b"},
		{"remove", "a b c", `el.classList.remove("b", "zz")`, "a c"},
		{"toggle on", "a", `if (!el.classList.toggle("b")) throw new Error("toggle on returns true")`, "a b"},
		{"toggle off", "a b", `if (el.classList.toggle("a")) throw new Error("toggle off returns false")`, "b"},
		{"toggle force on", "a", `if (!el.classList.toggle("a", true)) throw new Error("forced on")`, "a"},
		{"toggle force off", "a", `if (el.classList.toggle("b", false)) throw new Error("forced off")`, "a"},
		{"replace", "a b c", `if (!el.classList.replace("b", "x")) throw new Error("replace")`, "a x c"},
		{"replace merges", "a b c", `el.classList.replace("a", "c")`, "c b"},
		{"replace missing", "a", `if (el.classList.replace("q", "x")) throw new Error("missing")`, "a"},
		{"value", "a", `el.classList.value = "x y"`, "x y"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			win, _ := runScript(t, `<div id="el" class="`+tt.class+`"></div>`,
				`var el = document.getElementById("el");`+tt.script)
			if got, _ := byID(t, win, "el").GetAttribute("class"); got != tt.want {
				t.Errorf("class = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassListReads(t *testing.T) {
	runScript(t, `<div id="el" class="a  b c"></div>`, `
		var cl = document.getElementById("el").classList;
		if (cl.length !== 3) throw new Error("length: " + cl.length);
		if (!cl.contains("b") || cl.contains("d")) throw new Error("contains");
		if (cl[1] !== "b" || cl.item(2) !== "c") throw new Error("index");
		if (cl.item(5) !== null || cl[7] !== undefined) throw new Error("out of range");
		if (String(cl) !== "a  b c") throw new Error("toString: " + String(cl));
	`)
}

func TestClassListRejectsBadTokens(t *testing.T) {
	win := newWindow(t, `<div id="el"></div>`)
	engine := New(win, WithLogger(quietLogger()))
	for _, src := range []string{
		`document.getElementById("el").classList.add("")`,
		`document.getElementById("el").classList.add("ok", "a b")`,
		`document.getElementById("el").classList.toggle()`,
	} {
		if _, err := engine.Run(src); err == nil {
			t.Errorf("%s: expected an error", src)
		}
	}
	if byID(t, win, "el").HasAttribute("class") {
		t.Error("a rejected call must not change the class list")
	}
}

func TestClassListSharesMarkerWithEngine(t *testing.T) {
	win, engine := runScript(t, `
		<div id="x" data-aos="fade" data-aos-mirror style="height: 300px"></div>
		<div style="height: 3000px"></div>`, `
		AOS.init();
		var el = document.getElementById("x");
		if (!el.classList.contains("`+aos.ActiveClass+`")) throw new Error("engine marker not visible to classList");
		el.classList.remove("`+aos.ActiveClass+`");
	`)
	x := byID(t, win, "x")
	rec, _, ok := engine.AOS().Lookup(x)
	if !ok || rec.State != aos.Active {
		t.Fatalf("record = %+v, ok=%v", rec, ok)
	}
	if x.HasClass(aos.ActiveClass) {
		t.Fatal("script removal of the marker did not reach the node")
	}

	win.ScrollTo(1000)
	win.Loop().Advance(aos.ScrollThrottle)
	win.ScrollTo(0)
	win.Loop().Advance(aos.ScrollThrottle)
	if !x.HasClass(aos.ActiveClass) {
		t.Errorf("reactivation should restore the marker, class = %q", strings.Join(x.Classes(), " "))
	}
}
