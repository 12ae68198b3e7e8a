package record

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
)

// ErrNoNameColumn 表示名册表头中缺少姓名列。
var ErrNoNameColumn = errors.New("名册缺少 employeeName 列")

// LoadRosterFile 从 .xlsx 文件读取名册。
func LoadRosterFile(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("无法打开名册 %s: %w", path, err)
	}
	defer file.Close()
	return LoadRoster(file)
}

// LoadRoster 读取工作簿第一个工作表：首行为表头，其余每行一条记录。
// 表头匹配不区分大小写并忽略空白与下划线（"Employee Name" 对应 employeeName），
// 不认识的列会被忽略，整行为空则跳过。
func LoadRoster(r io.Reader) ([]Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("解析名册失败: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("名册中没有工作表")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("读取工作表 %s 失败: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, ErrNoNameColumn
	}

	columns := make([]string, len(rows[0]))
	hasName := false
	for i, cell := range rows[0] {
		columns[i] = matchField(cell)
		if columns[i] == "employeeName" {
			hasName = true
		}
	}
	if !hasName {
		return nil, ErrNoNameColumn
	}

	var out []Record
	for _, row := range rows[1:] {
		var rec Record
		filled := false
		for i, cell := range row {
			if i >= len(columns) || columns[i] == "" {
				continue
			}
			if strings.TrimSpace(cell) == "" {
				continue
			}
			rec.Set(columns[i], cell)
			filled = true
		}
		if !filled {
			continue
		}
		rec.Normalize()
		out = append(out, rec)
	}
	return out, nil
}

func matchField(header string) string {
	key := foldHeader(header)
	if key == "" {
		return ""
	}
	for _, name := range fieldNames {
		if foldHeader(name) == key {
			return name
		}
	}
	return ""
}

// foldHeader 去掉空白、下划线与连字符后做大小写折叠，"Employee Name" 与 employeeName 等价。
func foldHeader(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsSpace(r) || r == '_' || r == '-' {
			continue
		}
		b.WriteRune(r)
	}
	return cases.Fold().String(b.String())
}
