package xcal

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Dan9191/todo-service/internal/models"
	"github.com/beevik/etree"
)

// Namespace is the RFC 6321 xCal namespace
const Namespace = "urn:ietf:params:xml:ns:icalendar-2.0"

const prodID = "-//todo-service//calendar export//EN"

// Export renders the dated todos as an xCal document with one VTODO each.
// Todos without a date are left out.
func Export(todos []models.Todo, now time.Time) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)

	root := doc.CreateElement("icalendar")
	root.CreateAttr("xmlns", Namespace)

	vcal := root.CreateElement("vcalendar")
	props := vcal.CreateElement("properties")
	addProperty(props, "prodid", "text", prodID)
	addProperty(props, "version", "text", "2.0")

	components := vcal.CreateElement("components")
	stamp := now.UTC().Format("2006-01-02T15:04:05Z")
	for _, todo := range todos {
		if todo.Date == nil {
			continue
		}
		addTodo(components, todo, stamp)
	}

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("failed to write calendar: %w", err)
	}
	return out, nil
}

func addTodo(parent *etree.Element, todo models.Todo, stamp string) {
	props := parent.CreateElement("vtodo").CreateElement("properties")
	addProperty(props, "uid", "text", todo.ID)
	addProperty(props, "dtstamp", "date-time", stamp)
	addProperty(props, "created", "date-time", todo.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"))
	addProperty(props, "summary", "text", todo.Text)
	addProperty(props, "due", "date", *todo.Date)

	status := "NEEDS-ACTION"
	if todo.Completed {
		status = "COMPLETED"
	}
	addProperty(props, "status", "text", status)

	// 1 is the highest priority; 0 means undefined.
	priority := 0
	if todo.Important {
		priority = 1
	}
	addProperty(props, "priority", "integer", strconv.Itoa(priority))
}

func addProperty(props *etree.Element, name, valueType, value string) {
	props.CreateElement(name).CreateElement(valueType).SetText(value)
}
