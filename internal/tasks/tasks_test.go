package tasks

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyMessageTask(t *testing.T) {
	id := uuid.New()
	task, err := NewClassifyMessageTask(ClassifyMessagePayload{MessageID: id, Text: "How much does it cost?"})
	require.NoError(t, err)
	assert.Equal(t, TypeClassifyMessage, task.Type())

	p, err := ParseClassifyMessagePayload(task.Payload())
	require.NoError(t, err)
	assert.Equal(t, id, p.MessageID)
	assert.Equal(t, "How much does it cost?", p.Text)
}

func TestClassifyMessageTask_RequiresMessageID(t *testing.T) {
	_, err := NewClassifyMessageTask(ClassifyMessagePayload{Text: "hi"})
	assert.Error(t, err)

	_, err = ParseClassifyMessagePayload([]byte(`{"text":"hi"}`))
	assert.Error(t, err)

	_, err = ParseClassifyMessagePayload([]byte(`not json`))
	assert.Error(t, err)
}
