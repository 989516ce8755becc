// Package validation checks request bodies against JSON Schemas before they
// are decoded into request types.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// MaxBodyBytes caps the size of a request body
const MaxBodyBytes = 1 << 20

// Error describes why a body was rejected
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	Register = mustCompile("register.json", `{
		"type": "object",
		"properties": {
			"email":    {"type": "string"},
			"password": {"type": "string"},
			"name":     {"type": "string"}
		}
	}`)

	Login = mustCompile("login.json", `{
		"type": "object",
		"properties": {
			"email":    {"type": "string"},
			"password": {"type": "string"}
		}
	}`)

	CreateTodo = mustCompile("create-todo.json", `{
		"type": "object",
		"properties": {
			"text":      {"type": "string"},
			"date":      {"type": ["string", "null"]},
			"completed": {"type": "boolean"},
			"important": {"type": "boolean"}
		}
	}`)

	UpdateTodo = mustCompile("update-todo.json", `{
		"type": "object",
		"properties": {
			"text":      {"type": "string"},
			"date":      {"type": ["string", "null"]},
			"completed": {"type": "boolean"},
			"important": {"type": "boolean"}
		}
	}`)
)

func mustCompile(name, source string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(source)); err != nil {
		panic(fmt.Sprintf("schema %s: %v", name, err))
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("schema %s: %v", name, err))
	}
	return schema
}

// Decode reads r, validates it against schema and unmarshals it into dst.
// An empty body is treated as an empty object.
func Decode(r io.Reader, schema *jsonschema.Schema, dst interface{}) error {
	raw, err := io.ReadAll(io.LimitReader(r, MaxBodyBytes+1))
	if err != nil {
		return &Error{Message: "failed to read request body"}
	}
	if len(raw) > MaxBodyBytes {
		return &Error{Message: "request body too large"}
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = []byte("{}")
	}

	var doc interface{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return &Error{Message: "invalid JSON"}
	}
	if dec.More() {
		return &Error{Message: "invalid JSON: trailing data"}
	}

	if err := schema.Validate(doc); err != nil {
		return &Error{Message: schemaMessage(err)}
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return &Error{Message: "invalid JSON"}
	}
	return nil
}

func schemaMessage(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}
	var msgs []string
	collectCauses(ve, &msgs)
	if len(msgs) == 0 {
		return ve.Message
	}
	return strings.Join(msgs, "; ")
}

func collectCauses(err *jsonschema.ValidationError, msgs *[]string) {
	if len(err.Causes) == 0 {
		field := strings.TrimPrefix(err.InstanceLocation, "/")
		if field == "" {
			*msgs = append(*msgs, err.Message)
		} else {
			*msgs = append(*msgs, field+": "+err.Message)
		}
		return
	}
	for _, cause := range err.Causes {
		collectCauses(cause, msgs)
	}
}
