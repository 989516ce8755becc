package xcal

import (
	"testing"
	"time"

	"github.com/Dan9191/todo-service/internal/models"
	"github.com/beevik/etree"
)

func TestExport(t *testing.T) {
	due := "2024-05-01"
	created := time.Date(2024, 4, 20, 8, 0, 0, 0, time.UTC)
	todos := []models.Todo{
		{ID: "t1", Text: "buy milk & eggs", Date: &due, Important: true, CreatedAt: created},
		{ID: "t2", Text: "undated", CreatedAt: created},
		{ID: "t3", Text: "done", Date: &due, Completed: true, CreatedAt: created},
	}

	out, err := Export(todos, time.Date(2024, 4, 30, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(out); err != nil {
		t.Fatalf("output is not XML: %v", err)
	}
	root := doc.Root()
	if root == nil || root.Tag != "icalendar" || root.SelectAttrValue("xmlns", "") != Namespace {
		t.Fatalf("unexpected root: %v", root)
	}

	vtodos := doc.FindElements("//vcalendar/components/vtodo")
	if len(vtodos) != 2 {
		t.Fatalf("vtodo count: got %d, want 2", len(vtodos))
	}

	first := vtodos[0]
	checks := map[string]string{
		"./properties/uid/text":          "t1",
		"./properties/summary/text":      "buy milk & eggs",
		"./properties/due/date":          "2024-05-01",
		"./properties/status/text":       "NEEDS-ACTION",
		"./properties/priority/integer":  "1",
		"./properties/dtstamp/date-time": "2024-04-30T12:00:00Z",
	}
	for path, want := range checks {
		el := first.FindElement(path)
		if el == nil {
			t.Errorf("%s: missing", path)
			continue
		}
		if el.Text() != want {
			t.Errorf("%s: got %q, want %q", path, el.Text(), want)
		}
	}

	if got := vtodos[1].FindElement("./properties/status/text").Text(); got != "COMPLETED" {
		t.Errorf("completed status: got %q", got)
	}
	if got := vtodos[1].FindElement("./properties/priority/integer").Text(); got != "0" {
		t.Errorf("unflagged priority: got %q", got)
	}
}

func TestExportEmpty(t *testing.T) {
	out, err := Export(nil, time.Now())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(out); err != nil {
		t.Fatalf("output is not XML: %v", err)
	}
	if n := len(doc.FindElements("//vtodo")); n != 0 {
		t.Errorf("vtodo count: got %d, want 0", n)
	}
	if doc.FindElement("//vcalendar/properties/version/text") == nil {
		t.Error("version property missing")
	}
}
