// envelope.go

package protocol

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/jacl-coder/RuneForge-Server/internal/engine"
)

// Response HTTP 统一响应结构
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Code    string      `json:"code,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// StatusFor 错误码对应的HTTP状态码
func StatusFor(code string) int {
	switch code {
	case "INVALID_TARGET", "BATTLE_NOT_FOUND", "NO_ACTIVE_BATTLE":
		return http.StatusNotFound
	case "INVALID_ACTION", "INVALID_AMOUNT", "BAD_REQUEST":
		return http.StatusBadRequest
	case "INSUFFICIENT_FUNDS", "INSUFFICIENT_MANA", "INSUFFICIENT_ITEM",
		"NOT_YOUR_TURN", "BATTLE_NOT_JOINABLE", "BATTLE_NOT_ACTIVE",
		"BATTLE_IN_PROGRESS", "ALREADY_CLAIMED", "QUEST_NOT_COMPLETED":
		return http.StatusConflict
	case "STORAGE_FAILURE":
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// ErrorResponse 将引擎错误转换为响应，非预期错误不向调用方暴露细节
func ErrorResponse(err error) Response {
	code := engine.Code(err)
	if engine.IsExpected(err) {
		return Response{Success: false, Message: err.Error(), Code: code}
	}
	log.Printf("请求处理失败: %v", err)
	if code == "STORAGE_FAILURE" {
		return Response{Success: false, Message: "存储暂时不可用，请稍后重试", Code: code}
	}
	return Response{Success: false, Message: "服务器内部错误", Code: code}
}

// SendSuccess 发送成功响应
func SendSuccess(w http.ResponseWriter, message string, data interface{}) {
	writeJSON(w, http.StatusOK, Response{Success: true, Message: message, Data: data})
}

// SendError 发送错误响应
func SendError(w http.ResponseWriter, message, code string, statusCode int) {
	writeJSON(w, statusCode, Response{Success: false, Message: message, Code: code})
}

// SendEngineError 发送引擎错误响应
func SendEngineError(w http.ResponseWriter, err error) {
	resp := ErrorResponse(err)
	writeJSON(w, StatusFor(resp.Code), resp)
}

func writeJSON(w http.ResponseWriter, statusCode int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("编码响应失败: %v", err)
	}
}
