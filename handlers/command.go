package handlers

import (
	"log"
	"net/http"
	"quickpark/models"
	"quickpark/services"

	"github.com/gin-gonic/gin"
)

// EnqueueCommand 通用指令排入，給硬體整合測試用
func EnqueueCommand(c *gin.Context) {
	var cmd models.Command
	if err := c.ShouldBindJSON(&cmd); err != nil {
		log.Printf("Invalid command input: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  false,
			"message": "無效的指令格式",
			"error":   "cmd is required",
			"code":    "ERR_INVALID_INPUT",
		})
		return
	}

	services.Commands.Enqueue(cmd)
	log.Printf("Command %q queued for slot %q", cmd.Kind, cmd.SlotLabel)

	c.JSON(http.StatusOK, gin.H{
		"status":  true,
		"message": "指令已排入佇列",
	})
}

// NextCommand 硬體輪詢端點：取出佇列頭，取出即消失，不重送
func NextCommand(c *gin.Context) {
	cmd, found := services.Commands.DequeueNext()
	if !found {
		c.JSON(http.StatusOK, gin.H{
			"status":  true,
			"message": "佇列為空",
			"data":    nil,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  true,
		"message": "取得指令",
		"data":    cmd,
	})
}
