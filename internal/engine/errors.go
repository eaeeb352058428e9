// errors.go

package engine

import (
	"errors"
	"fmt"
)

// 可预期的业务错误，调用方通过 errors.Is 判断
var (
	ErrInsufficientFunds = errors.New("余额不足")
	ErrInsufficientMana  = errors.New("法力不足")
	ErrInsufficientItem  = errors.New("缺少所需物品")
	ErrInvalidTarget     = errors.New("目标不存在")
	ErrInvalidAction     = errors.New("当前不能执行该行动")
	ErrInvalidAmount     = errors.New("数量无效")
	ErrNotYourTurn       = errors.New("还没轮到你行动")
	ErrBattleNotFound    = errors.New("战斗不存在")
	ErrBattleNotJoinable = errors.New("战斗无法加入")
	ErrBattleNotActive   = errors.New("战斗未在进行中")
	ErrBattleInProgress  = errors.New("已有进行中的战斗")
	ErrNoActiveBattle    = errors.New("没有进行中的战斗")
	ErrAlreadyClaimed    = errors.New("奖励已领取")
	ErrQuestNotCompleted = errors.New("任务尚未完成")

	// ErrStorage 持久化失败，状态保持操作前的样子，可重试
	ErrStorage = errors.New("存储操作失败")
)

var errorCodes = []struct {
	err  error
	code string
}{
	{ErrInsufficientFunds, "INSUFFICIENT_FUNDS"},
	{ErrInsufficientMana, "INSUFFICIENT_MANA"},
	{ErrInsufficientItem, "INSUFFICIENT_ITEM"},
	{ErrInvalidTarget, "INVALID_TARGET"},
	{ErrInvalidAction, "INVALID_ACTION"},
	{ErrInvalidAmount, "INVALID_AMOUNT"},
	{ErrNotYourTurn, "NOT_YOUR_TURN"},
	{ErrBattleNotFound, "BATTLE_NOT_FOUND"},
	{ErrBattleNotJoinable, "BATTLE_NOT_JOINABLE"},
	{ErrBattleNotActive, "BATTLE_NOT_ACTIVE"},
	{ErrBattleInProgress, "BATTLE_IN_PROGRESS"},
	{ErrNoActiveBattle, "NO_ACTIVE_BATTLE"},
	{ErrAlreadyClaimed, "ALREADY_CLAIMED"},
	{ErrQuestNotCompleted, "QUEST_NOT_COMPLETED"},
	{ErrStorage, "STORAGE_FAILURE"},
}

// Code 错误对应的稳定错误码，供展示层使用
func Code(err error) string {
	if err == nil {
		return ""
	}
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return "INTERNAL_ERROR"
}

// IsExpected 是否为可预期的业务错误
func IsExpected(err error) bool {
	code := Code(err)
	return code != "" && code != "STORAGE_FAILURE" && code != "INTERNAL_ERROR"
}

// storageErr 包装持久化错误
func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}
