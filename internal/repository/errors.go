package repository

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound 实体不存在（调用方映射为空结果或 404）
var ErrNotFound = errors.New("not found")

// RowKind 一场比赛在时序库中的三行之一
type RowKind string

const (
	RowByDate  RowKind = "gamedetails"
	RowByTeam1 RowKind = "teamgames/team1"
	RowByTeam2 RowKind = "teamgames/team2"
)

// AllGameRows 一场比赛的全部三行，按写入顺序排列
var AllGameRows = []RowKind{RowByDate, RowByTeam1, RowByTeam2}

// PartialWriteError 三行写入中有部分失败，时序库此时处于不一致状态，
// 调用方可用 PutGameRows(FailedRows()...) 补写
type PartialWriteError struct {
	GameID string
	Rows   []RowKind
	Errs   []error
}

func (e *PartialWriteError) Error() string {
	parts := make([]string, len(e.Rows))
	for i, r := range e.Rows {
		parts[i] = fmt.Sprintf("%s: %v", r, e.Errs[i])
	}
	return fmt.Sprintf("比赛%s部分写入失败(%d/%d): %s", e.GameID, len(e.Rows), len(AllGameRows), strings.Join(parts, "; "))
}

func (e *PartialWriteError) Unwrap() []error { return e.Errs }

// FailedRows 写入失败的行
func (e *PartialWriteError) FailedRows() []RowKind { return e.Rows }
