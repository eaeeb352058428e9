// frame.go

package protocol

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// ToStruct 将任意可 JSON 序列化的值转换为 protobuf Struct
func ToStruct(v interface{}) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("序列化消息失败: %w", err)
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("消息必须是JSON对象: %w", err)
	}
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("转换消息失败: %w", err)
	}
	return s, nil
}

// EncodeFrame 编码为 protobuf 二进制帧
func EncodeFrame(v interface{}) ([]byte, error) {
	s, err := ToStruct(v)
	if err != nil {
		return nil, err
	}
	data, err := proto.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("编码二进制帧失败: %w", err)
	}
	return data, nil
}

// DecodeFrame 解码 protobuf 二进制帧到 v
func DecodeFrame(data []byte, v interface{}) error {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("解码二进制帧失败: %w", err)
	}
	raw, err := protojson.Marshal(&s)
	if err != nil {
		return fmt.Errorf("转换二进制帧失败: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("解析消息失败: %w", err)
	}
	return nil
}
