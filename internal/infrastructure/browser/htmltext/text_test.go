package htmltext

import (
	"strings"
	"testing"
)

func contains(haystack, needle string) bool {
	return strings.Contains(haystack, needle)
}

func TestVisibleText_SkipsScriptStyle(t *testing.T) {
	doc := `
<body>
    <div id="main">Hello</div>
    <script>alert("hi")</script>
    <style>.x { color: red }</style>
    <noscript>enable js</noscript>
</body>`

	out, err := VisibleText(doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if contains(out, "alert") || contains(out, "color") || contains(out, "enable js") {
		t.Errorf("script/style/noscript text must be skipped, output: %q", out)
	}
	if !contains(out, "Hello") {
		t.Errorf("expected to keep normal text, output: %q", out)
	}
}

func TestVisibleText_SkipsComments(t *testing.T) {
	out, err := VisibleText(`<body><!-- secret --><p>Text</p></body>`, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if contains(out, "secret") {
		t.Errorf("comments must be skipped")
	}
	if out != "Text" {
		t.Errorf("got %q, want %q", out, "Text")
	}
}

func TestVisibleText_SkipsHead(t *testing.T) {
	doc := `
<html>
<head><title>Tab title</title><meta charset="utf-8"></head>
<body><p>Hi</p></body>
</html>`

	out, err := VisibleText(doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if contains(out, "Tab title") {
		t.Errorf("head content must be skipped, output: %q", out)
	}
	if out != "Hi" {
		t.Errorf("got %q, want %q", out, "Hi")
	}
}

func TestVisibleText_SkipsHiddenElements(t *testing.T) {
	doc := `
<body>
    <div hidden>invisible</div>
    <span aria-hidden="true">icon</span>
    <span aria-hidden="false">label</span>
    <input type="hidden" value="token">
    <p>shown</p>
</body>`

	out, err := VisibleText(doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if contains(out, "invisible") || contains(out, "icon") {
		t.Errorf("hidden elements must be skipped, output: %q", out)
	}
	if !contains(out, "label") || !contains(out, "shown") {
		t.Errorf("visible text must remain, output: %q", out)
	}
}

func TestVisibleText_SeparatesBlocks(t *testing.T) {
	out, err := VisibleText(`<body><div>one</div><div>two</div><span>three</span><span>four</span></body>`, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if contains(out, "onetwo") {
		t.Errorf("blocks must not run together, output: %q", out)
	}
	if !contains(out, "threefour") {
		t.Errorf("inline elements must not be separated, output: %q", out)
	}
}

func TestVisibleText_Fragment(t *testing.T) {
	out, err := VisibleText(`plain <b>bold</b>`, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out != "plain bold" {
		t.Errorf("got %q, want %q", out, "plain bold")
	}
}

func TestVisibleText_CustomConfig(t *testing.T) {
	cfg := &Config{SkipTags: []string{"aside"}}

	out, err := VisibleText(`<body><aside>menu</aside><main>content</main></body>`, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out != "content" {
		t.Errorf("got %q, want %q", out, "content")
	}
}
