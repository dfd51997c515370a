package registry

import (
	"testing"
	"time"

	"github.com/solstice-ai/artemis-connectors/internal/domain/entities"
	"github.com/solstice-ai/artemis-connectors/internal/domain/errs"
	"github.com/solstice-ai/artemis-connectors/internal/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func echoTool(name string) (entities.ToolHandler, entities.Schema) {
	handler := func(arguments string) (string, error) {
		return "echo: " + arguments, nil
	}
	return handler, entities.Schema{Name: name, Description: "echoes arguments"}
}

func TestRegisterAndInvoke(t *testing.T) {
	reg := NewToolRegistry(zaptest.NewLogger(t))
	handler, schema := echoTool("test_echo")

	require.NoError(t, reg.Register("test_echo", handler, schema))

	result, err := reg.Invoke("test_echo", `{"x":1}`)
	require.NoError(t, err)
	assert.Equal(t, `echo: {"x":1}`, result)
}

func TestRegisterValidation(t *testing.T) {
	reg := NewToolRegistry(zaptest.NewLogger(t))
	handler, schema := echoTool("named")

	err := reg.Register("", handler, schema)
	assert.True(t, errs.IsValidation(err))

	err = reg.Register("named", nil, schema)
	assert.True(t, errs.IsValidation(err))

	err = reg.Register("other_name", handler, schema)
	assert.True(t, errs.IsValidation(err))
}

func TestRegisterDuplicate(t *testing.T) {
	reg := NewToolRegistry(zaptest.NewLogger(t))
	handler, schema := echoTool("dup")

	require.NoError(t, reg.Register("dup", handler, schema))
	err := reg.Register("dup", handler, schema)
	assert.True(t, errs.IsDuplicate(err))
}

func TestInvokeUnknownTool(t *testing.T) {
	reg := NewToolRegistry(zaptest.NewLogger(t))

	_, err := reg.Invoke("missing", "{}")
	assert.True(t, errs.IsNotFound(err))
}

func TestListPreservesRegistrationOrder(t *testing.T) {
	reg := NewToolRegistry(zaptest.NewLogger(t))
	names := []string{"c_tool", "a_tool", "b_tool"}
	for _, name := range names {
		handler, schema := echoTool(name)
		require.NoError(t, reg.Register(name, handler, schema))
	}

	var listed []string
	for _, entry := range reg.List() {
		listed = append(listed, entry.Name)
	}
	assert.Equal(t, names, listed)

	schemas := reg.Schemas()
	require.Len(t, schemas, 3)
	assert.Equal(t, "c_tool", schemas[0].Name)
}

func TestInvokePublishesToolCallEvent(t *testing.T) {
	reg := NewToolRegistry(zaptest.NewLogger(t))
	handler, schema := echoTool("evented")
	require.NoError(t, reg.Register("evented", handler, schema))

	received := make(chan events.ToolCallEventData, 1)
	unsubscribe := events.SubscribeToToolCallEvents(func(data events.ToolCallEventData) {
		received <- data
	})
	defer unsubscribe()

	_, err := reg.Invoke("evented", `{"k":"v"}`)
	require.NoError(t, err)

	select {
	case data := <-received:
		assert.Equal(t, "evented", data.Event.ToolName)
		assert.Equal(t, `{"k":"v"}`, data.Event.Arguments)
		assert.Empty(t, data.Event.Error)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for tool call event")
	}
}
