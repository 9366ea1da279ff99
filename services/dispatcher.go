package services

import (
	"fmt"
	"log"
	"quickpark/models"
	"strconv"
	"sync"
)

// CommandQueue 硬體指令佇列：無上限 FIFO，純記憶體，重啟即遺失
// 取出即消失（at-most-once），硬體端輪詢後不回 ack 也不重送
type CommandQueue struct {
	mu    sync.Mutex
	items []models.Command
}

// Commands 行程內唯一的佇列，啟動時由 InitCommandQueue 建立
var Commands *CommandQueue

func InitCommandQueue() {
	Commands = NewCommandQueue()
	log.Println("Command queue initialized")
}

func NewCommandQueue() *CommandQueue {
	return &CommandQueue{}
}

// Enqueue 排入佇列尾端，永不阻塞
func (q *CommandQueue) Enqueue(cmd models.Command) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, cmd)
}

// DequeueNext 取出佇列頭，空佇列回 false（硬體端視為沒事做）
func (q *CommandQueue) DequeueNext() (models.Command, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return models.Command{}, false
	}
	cmd := q.items[0]
	q.items = q.items[1:]
	return cmd, true
}

// Len 目前佇列長度
func (q *CommandQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Drain 清空佇列並回傳被丟棄的指令數，收站時呼叫
func (q *CommandQueue) Drain() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	dropped := len(q.items)
	q.items = nil
	return dropped
}

// buildOccupyCommands 佔用流程的三連發指令，順序固定：授權 → 設定時長 → 啟動
func buildOccupyCommands(slotLabel string, userID, durationUnits int) []models.Command {
	return []models.Command{
		{Kind: models.CmdAuthorize, SlotLabel: slotLabel, Payload: strconv.Itoa(userID)},
		{Kind: models.CmdSetDuration, SlotLabel: slotLabel, Payload: strconv.Itoa(durationUnits)},
		{Kind: models.CmdStart, SlotLabel: slotLabel},
	}
}

// OccupySlot 使用者開始佔用：驗證跟確認預約相同（必須是本人的 reserved 車位），
// 通過後把三連發指令排入佇列就回應，實體動作 fire-and-forget
func OccupySlot(slotNumber, userID, durationUnits int) (*models.Slot, error) {
	slot, err := GetSlotByNumber(slotNumber)
	if err != nil {
		return nil, err
	}

	if slot.Status != models.SlotReserved {
		return nil, fmt.Errorf("%w: slot %d is %s, not reserved", ErrConflict, slotNumber, slot.Status)
	}
	if slot.OccupantID == nil || *slot.OccupantID != userID {
		return nil, fmt.Errorf("%w: slot %d is not reserved by user %d", ErrForbidden, slotNumber, userID)
	}

	label := strconv.Itoa(slotNumber)
	for _, cmd := range buildOccupyCommands(label, userID, durationUnits) {
		Commands.Enqueue(cmd)
	}

	log.Printf("Occupy commands queued for slot %d (user %d, %d units)", slotNumber, userID, durationUnits)
	return slot, nil
}
