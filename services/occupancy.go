package services

import (
	"fmt"
	"log"
	"quickpark/database"
	"quickpark/models"
	"time"
)

// Actor 回報來源：app 使用者、硬體感測器、管理員，信任等級由低到高
type Actor string

const (
	ActorUser   Actor = "user"
	ActorSensor Actor = "sensor"
	ActorAdmin  Actor = "admin"
)

// PlaceholderOccupantID 感測器回報佔用但查無預約人時的代位身分
// 產品面還沒定案要不要拒收這種訊號，先記 0 並大聲記 log
const PlaceholderOccupantID = 0

// 轉移效果
type transitionEffect int

const (
	effectReject      transitionEffect = iota // 拒絕，附錯誤分類
	effectNoop                                // 接受但不改狀態（回覆說明文字）
	effectOccupy                              // 進入 occupied，綁定佔用人
	effectCloseStay                           // 結束停留，結算停留秒數
	effectUserRelease                         // 使用者自行放棄預約（需驗身分）
)

type transitionKey struct {
	current   string
	actor     Actor
	requested string
}

type transitionRule struct {
	effect transitionEffect
	err    error  // effectReject 時的分類
	reason string // 給呼叫端的說明
}

// transitionTable 三方仲裁表：(目前狀態, 來源, 要求狀態) → 效果
// 管理員不走這張表，直接強制轉移
var transitionTable = map[transitionKey]transitionRule{
	// 感測器
	{models.SlotAvailable, ActorSensor, models.SlotAvailable}: {effect: effectReject, err: ErrConflict, reason: "slot is already available"},
	{models.SlotAvailable, ActorSensor, models.SlotOccupied}:  {effect: effectOccupy},
	{models.SlotReserved, ActorSensor, models.SlotAvailable}:  {effect: effectNoop, reason: "sensor cannot clear a reservation"},
	{models.SlotReserved, ActorSensor, models.SlotOccupied}:   {effect: effectOccupy},
	{models.SlotOccupied, ActorSensor, models.SlotAvailable}:  {effect: effectCloseStay},
	{models.SlotOccupied, ActorSensor, models.SlotOccupied}:   {effect: effectReject, err: ErrConflict, reason: "slot is already occupied"},

	// 使用者：只能放棄自己的預約，不能直接宣告佔用
	{models.SlotAvailable, ActorUser, models.SlotAvailable}: {effect: effectReject, err: ErrForbidden, reason: "slot is not reserved by you"},
	{models.SlotAvailable, ActorUser, models.SlotOccupied}:  {effect: effectReject, err: ErrForbidden, reason: "users cannot force occupancy"},
	{models.SlotReserved, ActorUser, models.SlotAvailable}:  {effect: effectUserRelease},
	{models.SlotReserved, ActorUser, models.SlotOccupied}:   {effect: effectReject, err: ErrForbidden, reason: "users cannot force occupancy"},
	{models.SlotOccupied, ActorUser, models.SlotAvailable}:  {effect: effectReject, err: ErrForbidden, reason: "occupied slots are closed by the sensor"},
	{models.SlotOccupied, ActorUser, models.SlotOccupied}:   {effect: effectReject, err: ErrForbidden, reason: "users cannot force occupancy"},
}

// resolveTransition 查表，查不到一律拒絕
func resolveTransition(current string, actor Actor, requested string) transitionRule {
	if rule, ok := transitionTable[transitionKey{current, actor, requested}]; ok {
		return rule
	}
	return transitionRule{effect: effectReject, err: ErrForbidden, reason: "transition not permitted"}
}

// ReportSlotStatus 三方狀態仲裁入口，唯一能把車位轉成 occupied 或從 occupied 放回 available 的地方
// userID 對使用者來說是本人，對管理員來說是強制指派的對象（可為 0），感測器則忽略
// 回傳值第二個欄位是給呼叫端的說明文字（例如感測器 no-op 的原因）
func ReportSlotStatus(slotNumber int, requested string, actor Actor, userID int) (*models.Slot, string, error) {
	if requested != models.SlotAvailable && requested != models.SlotReserved && requested != models.SlotOccupied {
		return nil, "", fmt.Errorf("%w: invalid status %q", ErrConflict, requested)
	}
	if requested == models.SlotReserved && actor != ActorAdmin {
		return nil, "", fmt.Errorf("%w: only admins can force a reservation", ErrForbidden)
	}

	slot, err := GetSlotByNumber(slotNumber)
	if err != nil {
		return nil, "", err
	}
	now := time.Now().UTC()

	// 管理員是逃生口，繞過仲裁表
	if actor == ActorAdmin {
		slot, err = forceTransition(slot, requested, userID, now)
		return slot, "", err
	}

	rule := resolveTransition(slot.Status, actor, requested)
	switch rule.effect {
	case effectNoop:
		log.Printf("Slot %d: %s report of %q ignored (%s)", slotNumber, actor, requested, rule.reason)
		return slot, rule.reason, nil

	case effectOccupy:
		slot, err = occupySlot(slot, now)
		return slot, "", err

	case effectCloseStay:
		slot, err = closeStay(slot, now)
		return slot, "", err

	case effectUserRelease:
		if slot.OccupantID == nil || *slot.OccupantID != userID {
			return nil, "", fmt.Errorf("%w: slot %d is not reserved by user %d", ErrForbidden, slotNumber, userID)
		}
		slot, err = CancelReservation(slotNumber, userID, false)
		return slot, "", err

	default:
		return nil, "", fmt.Errorf("%w: %s", rule.err, rule.reason)
	}
}

// occupySlot 轉成 occupied：預約位綁定預約人，空位綁定代位身分
func occupySlot(slot *models.Slot, now time.Time) (*models.Slot, error) {
	occupant := PlaceholderOccupantID
	if slot.Status == models.SlotReserved && slot.OccupantID != nil {
		occupant = *slot.OccupantID
	}
	if occupant == PlaceholderOccupantID {
		log.Printf("Slot %d occupied with no known reservation holder, recording placeholder occupant", slot.SlotNumber)
	}

	res := database.DB.Model(&models.Slot{}).
		Where("slot_number = ? AND status = ?", slot.SlotNumber, slot.Status).
		Updates(map[string]interface{}{
			"status":          models.SlotOccupied,
			"occupant_id":     occupant,
			"occupied_since":  now,
			"lock_holder_id":  nil,
			"lock_expires_at": nil,
			"updated_at":      now,
		})
	if res.Error != nil {
		log.Printf("Failed to mark slot %d occupied: %v", slot.SlotNumber, res.Error)
		return nil, fmt.Errorf("failed to mark slot %d occupied: %w", slot.SlotNumber, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: slot %d changed state during the update", ErrConflict, slot.SlotNumber)
	}

	updated, err := GetSlotByNumber(slot.SlotNumber)
	if err != nil {
		return nil, err
	}
	log.Printf("Slot %d is now occupied by user %d", slot.SlotNumber, occupant)
	return updated, nil
}

// closeStay 結束停留：結算停留秒數、清掉佔用人，再嘗試扣款
func closeStay(slot *models.Slot, now time.Time) (*models.Slot, error) {
	var staySeconds int64
	if slot.OccupiedSince != nil {
		staySeconds = int64(now.Sub(*slot.OccupiedSince).Seconds())
		if staySeconds < 0 {
			staySeconds = 0
		}
	}

	res := database.DB.Model(&models.Slot{}).
		Where("slot_number = ? AND status = ?", slot.SlotNumber, models.SlotOccupied).
		Updates(map[string]interface{}{
			"status":            models.SlotAvailable,
			"occupant_id":       nil,
			"occupied_since":    nil,
			"last_stay_seconds": staySeconds,
			"lock_holder_id":    nil,
			"lock_expires_at":   nil,
			"updated_at":        now,
		})
	if res.Error != nil {
		log.Printf("Failed to close stay on slot %d: %v", slot.SlotNumber, res.Error)
		return nil, fmt.Errorf("failed to close stay on slot %d: %w", slot.SlotNumber, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: slot %d changed state during the update", ErrConflict, slot.SlotNumber)
	}

	// 扣款失敗不影響停留已結束的事實，只記 log
	if slot.OccupantID != nil && *slot.OccupantID != PlaceholderOccupantID {
		if err := ChargeForStay(*slot.OccupantID, slot.SlotNumber, staySeconds); err != nil {
			log.Printf("Failed to charge user %d for slot %d stay (%ds): %v",
				*slot.OccupantID, slot.SlotNumber, staySeconds, err)
		}
	}

	updated, err := GetSlotByNumber(slot.SlotNumber)
	if err != nil {
		return nil, err
	}
	log.Printf("Slot %d stay closed after %d seconds", slot.SlotNumber, staySeconds)
	return updated, nil
}

// forceTransition 管理員強制轉移，欄位一律整理成目標狀態的合法組合
func forceTransition(slot *models.Slot, requested string, targetUserID int, now time.Time) (*models.Slot, error) {
	fields := map[string]interface{}{
		"status":     requested,
		"updated_at": now,
	}

	switch requested {
	case models.SlotAvailable:
		// 從 occupied 硬放回 available 也要把停留秒數結清
		if slot.Status == models.SlotOccupied && slot.OccupiedSince != nil {
			staySeconds := int64(now.Sub(*slot.OccupiedSince).Seconds())
			if staySeconds < 0 {
				staySeconds = 0
			}
			fields["last_stay_seconds"] = staySeconds
		}
		fields["occupant_id"] = nil
		fields["occupied_since"] = nil
		fields["lock_holder_id"] = nil
		fields["lock_expires_at"] = nil

	case models.SlotReserved:
		occupant := targetUserID
		if occupant == 0 && slot.OccupantID != nil {
			occupant = *slot.OccupantID
		}
		if occupant == 0 {
			return nil, fmt.Errorf("%w: forcing a reservation requires a target user", ErrConflict)
		}
		fields["occupant_id"] = occupant
		fields["occupied_since"] = nil
		fields["lock_holder_id"] = occupant
		fields["lock_expires_at"] = now.Add(DefaultReservationSeconds * time.Second)

	case models.SlotOccupied:
		occupant := targetUserID
		if occupant == 0 && slot.OccupantID != nil {
			occupant = *slot.OccupantID
		}
		fields["occupant_id"] = occupant
		fields["occupied_since"] = now
		fields["lock_holder_id"] = nil
		fields["lock_expires_at"] = nil
	}

	res := database.DB.Model(&models.Slot{}).
		Where("slot_number = ?", slot.SlotNumber).
		Updates(fields)
	if res.Error != nil {
		log.Printf("Failed to force slot %d to %s: %v", slot.SlotNumber, requested, res.Error)
		return nil, fmt.Errorf("failed to force slot %d to %s: %w", slot.SlotNumber, requested, res.Error)
	}

	updated, err := GetSlotByNumber(slot.SlotNumber)
	if err != nil {
		return nil, err
	}
	log.Printf("Admin forced slot %d from %s to %s", slot.SlotNumber, slot.Status, requested)
	return updated, nil
}
