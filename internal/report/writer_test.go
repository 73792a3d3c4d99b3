package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/nao1215/devspec/internal/model"
)

// testDevices returns a small device list for testing.
func testDevices() []model.DeviceInfo {
	return []model.DeviceInfo{
		{
			URL:       "https://www.gsmarena.com/samsung_galaxy_s24-12773.php",
			ModelName: "Samsung Galaxy S24",
			Status:    "Available. Released 2024, January 24",
			OS:        "Android 14",
			Model:     "SM-S921B",
			Price:     "$ 799.99",
		},
		{
			URL:       "https://www.gsmarena.com/apple_iphone_15-12559.php",
			ModelName: "Apple iPhone 15",
			Status:    "Available. Released 2023, September 22",
			OS:        "iOS 17",
		},
	}
}

// TestSimpleWriter tests the text table writer.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes every device", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewSimpleWriter(&buf).Write(testDevices())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("expected %d bytes reported, got %d", buf.Len(), n)
		}

		output := buf.String()
		for _, want := range []string{"Samsung Galaxy S24", "Apple iPhone 15", "SM-S921B", "iOS 17", "2 devices"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
		if strings.Contains(output, "gsmarena.com") {
			t.Error("expected url column to be hidden by default")
		}
	})

	t.Run("url column", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithURL(true)).Write(testDevices()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "apple_iphone_15-12559.php") {
			t.Error("expected output to contain device url")
		}
	})

	t.Run("empty list", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "0 devices") {
			t.Errorf("expected count line, got %q", buf.String())
		}
	})
}

// TestMarkdownWriter tests the Markdown writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes heading and table", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(testDevices()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "# "+DefaultMarkdownTitle) {
			t.Error("expected output to contain heading")
		}
		if !strings.Contains(output, "| model_name | status | os | model | price |") {
			t.Errorf("expected table header, got:\n%s", output)
		}
		if !strings.Contains(output, "[Apple iPhone 15](https://www.gsmarena.com/apple_iphone_15-12559.php)") {
			t.Error("expected model name to link to the device page")
		}
		if !strings.Contains(output, "2 devices") {
			t.Error("expected device count")
		}
	})

	t.Run("escapes pipes", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		devices := []model.DeviceInfo{{URL: "u", ModelName: "X", Price: "100 EUR | 90 GBP"}}
		if _, err := NewMarkdownWriter(&buf).Write(devices); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), `100 EUR \| 90 GBP`) {
			t.Errorf("expected escaped pipe, got:\n%s", buf.String())
		}
	})

	t.Run("empty list has no table", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(buf.String(), "| model_name") {
			t.Error("expected no table for an empty list")
		}
		if !strings.Contains(buf.String(), "devspec crawl") {
			t.Error("expected hint to run a crawl")
		}
	})
}

// TestJSONWriter tests the JSON writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes snake_case array", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(testDevices()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded []map[string]string
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(decoded) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(decoded))
		}
		if decoded[0]["model_name"] != "Samsung Galaxy S24" || decoded[1]["os"] != "iOS 17" {
			t.Errorf("unexpected entries: %v", decoded)
		}
		if strings.Contains(buf.String(), "\n  ") {
			t.Error("expected compact output")
		}
	})

	t.Run("pretty print", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(testDevices()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  {") {
			t.Errorf("expected indented output, got:\n%s", buf.String())
		}
	})

	t.Run("nil is an empty array", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := strings.TrimSpace(buf.String()); got != "[]" {
			t.Errorf("expected [], got %q", got)
		}
	})
}

// TestWritersImplementInterface checks every writer satisfies Writer.
func TestWritersImplementInterface(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	writers := []Writer{
		NewSimpleWriter(&buf),
		NewMarkdownWriter(&buf),
		NewJSONWriter(&buf),
	}
	for _, w := range writers {
		if _, err := w.Write(testDevices()); err != nil {
			t.Errorf("%T: unexpected error: %v", w, err)
		}
	}
}
