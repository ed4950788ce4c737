package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"todo/internal/service"
)

const taskSchemaJSON = `{
  "type": "object",
  "required": ["id", "title"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "title": {"type": ["string", "null"]},
    "completed": {"type": ["boolean", "null"]}
  }
}`

const taskListSchemaJSON = `{
  "type": "array",
  "items": {"$ref": "task.json"}
}`

const (
	taskSchemaURL     = "https://todo.local/schema/task.json"
	taskListSchemaURL = "https://todo.local/schema/tasks.json"
)

var (
	taskSchema     *jsonschema.Schema
	taskListSchema *jsonschema.Schema
)

func init() {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(taskSchemaURL, strings.NewReader(taskSchemaJSON)); err != nil {
		panic(err)
	}
	if err := compiler.AddResource(taskListSchemaURL, strings.NewReader(taskListSchemaJSON)); err != nil {
		panic(err)
	}
	taskSchema = compiler.MustCompile(taskSchemaURL)
	taskListSchema = compiler.MustCompile(taskListSchemaURL)
}

// envelopeKey is the field some servers wrap the task array in.
const envelopeKey = "tasks"

// decodeTaskList accepts a bare array of tasks or {"tasks": [...]}.
func decodeTaskList(body []byte) ([]service.Task, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, malformed("empty body")
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, malformed("invalid json: %v", err)
	}

	if obj, ok := doc.(map[string]any); ok {
		inner, found := obj[envelopeKey]
		if !found {
			return nil, malformed("expected an array of tasks")
		}
		doc = inner
	}

	if err := validate(taskListSchema, doc); err != nil {
		return nil, err
	}

	items, _ := doc.([]any)
	tasks := make([]service.Task, 0, len(items))
	for _, item := range items {
		obj, _ := item.(map[string]any)
		tasks = append(tasks, toTask(obj))
	}
	return tasks, nil
}

// decodeCreated returns the created task when the body carries one.
// An empty body or an object without "id" is an acknowledgement: ok is false.
func decodeCreated(body []byte) (task service.Task, ok bool, err error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return service.Task{}, false, nil
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return service.Task{}, false, malformed("invalid json: %v", err)
	}

	obj, isObject := doc.(map[string]any)
	if !isObject {
		return service.Task{}, false, malformed("expected a task object")
	}
	if _, hasID := obj["id"]; !hasID {
		return service.Task{}, false, nil
	}

	if err := validate(taskSchema, obj); err != nil {
		return service.Task{}, false, err
	}
	return toTask(obj), true, nil
}

// toTask maps a schema-validated object. A missing or null "completed" is false
// and a null "title" is empty.
func toTask(obj map[string]any) service.Task {
	id, _ := obj["id"].(string)
	title, _ := obj["title"].(string)
	completed, _ := obj["completed"].(bool)
	return service.Task{ID: id, Title: title, Completed: completed}
}

func validate(schema *jsonschema.Schema, doc any) error {
	err := schema.Validate(doc)
	if err == nil {
		return nil
	}

	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return malformed("%v", err)
	}

	var msgs []string
	collectSchemaErrors(&msgs, ve)
	return malformed("%s", strings.Join(msgs, "; "))
}

// collectSchemaErrors flattens the validation tree to its leaf messages.
func collectSchemaErrors(msgs *[]string, err *jsonschema.ValidationError) {
	if len(err.Causes) == 0 {
		loc := err.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		*msgs = append(*msgs, fmt.Sprintf("%s: %s", loc, err.Message))
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(msgs, cause)
	}
}
