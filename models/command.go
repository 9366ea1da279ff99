package models

// 硬體指令類型
const (
	CmdAuthorize   = "authorize"
	CmdSetDuration = "set_duration"
	CmdStart       = "start"
	CmdStop        = "stop"
	CmdUnlock      = "unlock"
)

// Command 硬體指令：只存在於派發佇列，不落資料庫，重啟即遺失
type Command struct {
	Kind      string `json:"cmd" binding:"required"`
	SlotLabel string `json:"slot_label"`
	Payload   string `json:"payload,omitempty"`
}
