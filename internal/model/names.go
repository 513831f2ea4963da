package model

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// teamNamespace 球队ID的 UUIDv5 命名空间，改动会使已有 team_id 全部失效
var teamNamespace = uuid.MustParse("8f0c7d2e-5b1a-4c3e-9d7f-2a6b4e8c1f30")

// NormalizeName 队名规范化：NFC、折叠大小写、合并空白
func NormalizeName(name string) string {
	s := norm.NFC.String(name)
	s = cases.Fold().String(s) // Caser 有状态，不能跨 goroutine 共享
	return strings.Join(strings.Fields(s), " ")
}

// CleanName 仅做 NFC 与空白整理，保留原始大小写，用于展示与存储
func CleanName(name string) string {
	return strings.Join(strings.Fields(norm.NFC.String(name)), " ")
}

// TeamID 由队名派生稳定的球队ID，同名球队每次拉取都得到同一个ID
func TeamID(name string) string {
	return uuid.NewSHA1(teamNamespace, []byte(NormalizeName(name))).String()
}
