package model

import "errors"

var (
	// ErrInvalidGame 比赛数据不满足入库约束
	ErrInvalidGame = errors.New("invalid game")
	// ErrInvalidRawGame 数据源返回的比赛字段无法解析
	ErrInvalidRawGame = errors.New("invalid raw game")
	// ErrInvalidRawTeam 数据源返回的球队字段无法解析
	ErrInvalidRawTeam = errors.New("invalid raw team")
	// ErrUnknownConference 分区标题无法识别
	ErrUnknownConference = errors.New("unknown conference")
)
