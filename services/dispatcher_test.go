package services

import (
	"testing"

	"quickpark/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandQueueFIFO(t *testing.T) {
	q := NewCommandQueue()

	q.Enqueue(models.Command{Kind: models.CmdAuthorize, SlotLabel: "1"})
	q.Enqueue(models.Command{Kind: models.CmdStart, SlotLabel: "1"})
	q.Enqueue(models.Command{Kind: models.CmdStop, SlotLabel: "2"})
	require.Equal(t, 3, q.Len())

	first, ok := q.DequeueNext()
	require.True(t, ok)
	assert.Equal(t, models.CmdAuthorize, first.Kind)

	second, ok := q.DequeueNext()
	require.True(t, ok)
	assert.Equal(t, models.CmdStart, second.Kind)

	third, ok := q.DequeueNext()
	require.True(t, ok)
	assert.Equal(t, models.CmdStop, third.Kind)
	assert.Equal(t, "2", third.SlotLabel)

	// 取出即消失，不重送
	_, ok = q.DequeueNext()
	assert.False(t, ok)
	assert.Equal(t, 0, q.Len())
}

func TestCommandQueueEmptyDequeue(t *testing.T) {
	q := NewCommandQueue()

	cmd, ok := q.DequeueNext()
	assert.False(t, ok)
	assert.Equal(t, models.Command{}, cmd)
}

func TestCommandQueueDrain(t *testing.T) {
	q := NewCommandQueue()
	q.Enqueue(models.Command{Kind: models.CmdUnlock, SlotLabel: "5"})
	q.Enqueue(models.Command{Kind: models.CmdStop, SlotLabel: "5"})

	assert.Equal(t, 2, q.Drain())
	assert.Equal(t, 0, q.Len())
	assert.Equal(t, 0, q.Drain())
}

func TestBuildOccupyCommands(t *testing.T) {
	cmds := buildOccupyCommands("7", 42, 3)
	require.Len(t, cmds, 3)

	// 順序固定：授權 → 設定時長 → 啟動
	assert.Equal(t, models.CmdAuthorize, cmds[0].Kind)
	assert.Equal(t, "42", cmds[0].Payload)

	assert.Equal(t, models.CmdSetDuration, cmds[1].Kind)
	assert.Equal(t, "3", cmds[1].Payload)

	assert.Equal(t, models.CmdStart, cmds[2].Kind)
	assert.Empty(t, cmds[2].Payload)

	for _, cmd := range cmds {
		assert.Equal(t, "7", cmd.SlotLabel)
	}
}
