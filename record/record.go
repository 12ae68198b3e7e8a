package record

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Record 描述一份录用文书所需的申请人/员工信息。所有字段均为字符串，
// 日期字段使用 YYYY-MM-DD 形式，格式化时再做校验。
type Record struct {
	EmployeeName   string `json:"employeeName"`
	Position       string `json:"position"`
	HourlyRate     string `json:"hourlyRate"`
	Salary         string `json:"salary"`
	Date           string `json:"date"`
	TrainingDate   string `json:"trainingDate"`
	EffectiveDate  string `json:"effectiveDate"`
	SupervisorName string `json:"supervisorName"`
	Address        string `json:"address"`
	LogoURL        string `json:"logoUrl"`
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// Normalize 去除首尾空白并将文本统一为 NFC 形式，避免组合字符在排版时被拆开。
func (r *Record) Normalize() {
	for _, f := range r.fieldPtrs() {
		*f = norm.NFC.String(strings.TrimSpace(*f))
	}
}

// Fields 返回供模板插值使用的数据，键名与 JSON 标签一致。
func (r Record) Fields() map[string]any {
	out := make(map[string]any, len(fieldNames))
	ptrs := r.fieldPtrs()
	for i, name := range fieldNames {
		out[name] = *ptrs[i]
	}
	return out
}

// Set 按字段名（JSON 标签）赋值，未知字段返回 false。
func (r *Record) Set(name, value string) bool {
	ptrs := r.fieldPtrs()
	for i, n := range fieldNames {
		if n == name {
			*ptrs[i] = value
			return true
		}
	}
	return false
}

// FileName 生成输出文件名：prefix-姓名.pdf，姓名中的连续空白替换为单个连字符。
func FileName(prefix, name string) string {
	return prefix + "-" + whitespaceRun.ReplaceAllString(name, "-") + ".pdf"
}

// fieldNames 与 fieldPtrs 的顺序必须保持一致。
var fieldNames = []string{
	"employeeName",
	"position",
	"hourlyRate",
	"salary",
	"date",
	"trainingDate",
	"effectiveDate",
	"supervisorName",
	"address",
	"logoUrl",
}

func (r *Record) fieldPtrs() []*string {
	return []*string{
		&r.EmployeeName,
		&r.Position,
		&r.HourlyRate,
		&r.Salary,
		&r.Date,
		&r.TrainingDate,
		&r.EffectiveDate,
		&r.SupervisorName,
		&r.Address,
		&r.LogoURL,
	}
}
