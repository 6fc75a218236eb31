/*
 * @module service/form/rules
 * @description 校验规则合成器，由列配置推导出记录数据的校验规则并执行校验
 * @architecture 分层架构 - 业务服务层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 列配置 -> 规则合成 -> 记录数据校验 -> 归一化值或字段级错误集合
 * @rules 规则集是纯数据；校验收集全部违规字段后一次返回；归一化值用于落库
 * @dependencies formhub-service/service/models, github.com/spf13/cast
 * @refs service/form/record_service.go
 */

package form

import (
	"fmt"
	"math"
	"time"

	"formhub-service/service/models"

	"github.com/spf13/cast"
)

// 规则种类枚举
const (
	RuleKindString   = "string"
	RuleKindText     = "text"
	RuleKindInteger  = "integer"
	RuleKindNumeric  = "numeric"
	RuleKindDate     = "date"
	RuleKindDatetime = "datetime"
	RuleKindBoolean  = "boolean"
	RuleKindIn       = "in"
)

// 日期与时间的标准格式
const (
	dateLayout     = "2006-01-02"
	datetimeLayout = "2006-01-02 15:04:05"
)

// Rule 单列校验规则
type Rule struct {
	Kind      string
	Required  bool
	MaxLength int
	Options   []string
}

// RuleSet 列名到校验规则的映射，保留列声明顺序
type RuleSet struct {
	order []string
	rules map[string]Rule
}

// BuildRules 根据列配置合成校验规则集
func BuildRules(columns models.ColumnSpecList) *RuleSet {
	set := &RuleSet{
		order: make([]string, 0, len(columns)),
		rules: make(map[string]Rule, len(columns)),
	}

	for _, column := range columns {
		rule := Rule{Required: column.Required}

		switch column.Type {
		case models.ColumnTypeString:
			rule.Kind = RuleKindString
			rule.MaxLength = column.MaxLength
			if rule.MaxLength <= 0 || rule.MaxLength > 255 {
				rule.MaxLength = 255
			}
		case models.ColumnTypeText:
			rule.Kind = RuleKindText
		case models.ColumnTypeNumber:
			rule.Kind = RuleKindInteger
		case models.ColumnTypeDecimal:
			rule.Kind = RuleKindNumeric
		case models.ColumnTypeDate:
			rule.Kind = RuleKindDate
		case models.ColumnTypeDatetime:
			rule.Kind = RuleKindDatetime
		case models.ColumnTypeBoolean:
			rule.Kind = RuleKindBoolean
		case models.ColumnTypeEnum:
			rule.Kind = RuleKindIn
			rule.Options = column.Options
		default:
			// 未知类型按字符串处理，与物理列的回退策略保持一致
			rule.Kind = RuleKindString
			rule.MaxLength = 255
		}

		set.order = append(set.order, column.Name)
		set.rules[column.Name] = rule
	}

	return set
}

// Columns 返回规则集覆盖的列名，按声明顺序
func (s *RuleSet) Columns() []string {
	return s.order
}

// Validate 校验记录数据
// 返回归一化后的列值映射；存在违规时返回包含全部违规字段的校验错误
func (s *RuleSet) Validate(values models.Record) (models.Record, *models.ValidationError) {
	verr := models.NewValidationError()
	normalized := make(models.Record, len(s.order))

	for _, name := range s.order {
		rule := s.rules[name]
		value, present := values[name]

		if !present || value == nil || value == "" {
			if rule.Required {
				verr.Add(name, fmt.Sprintf("%s 为必填项", name))
			} else if present {
				normalized[name] = nil
			}
			continue
		}

		coerced, err := coerce(rule, value)
		if err != nil {
			verr.Add(name, err.Error())
			continue
		}
		normalized[name] = coerced
	}

	if verr.HasErrors() {
		return nil, verr
	}
	return normalized, nil
}

// coerce 按规则归一化单个值
func coerce(rule Rule, value interface{}) (interface{}, error) {
	switch rule.Kind {
	case RuleKindString:
		text, err := cast.ToStringE(value)
		if err != nil {
			return nil, fmt.Errorf("必须是字符串")
		}
		if len(text) > rule.MaxLength {
			return nil, fmt.Errorf("长度不能超过%d个字符", rule.MaxLength)
		}
		return text, nil

	case RuleKindText:
		text, err := cast.ToStringE(value)
		if err != nil {
			return nil, fmt.Errorf("必须是字符串")
		}
		return text, nil

	case RuleKindInteger:
		if f, err := cast.ToFloat64E(value); err == nil && math.Trunc(f) != f {
			return nil, fmt.Errorf("必须是整数")
		}
		n, err := cast.ToInt64E(value)
		if err != nil {
			return nil, fmt.Errorf("必须是整数")
		}
		return n, nil

	case RuleKindNumeric:
		f, err := cast.ToFloat64E(value)
		if err != nil {
			return nil, fmt.Errorf("必须是数字")
		}
		return f, nil

	case RuleKindDate:
		text, err := cast.ToStringE(value)
		if err != nil {
			return nil, fmt.Errorf("日期格式应为 %s", dateLayout)
		}
		if _, err := time.Parse(dateLayout, text); err != nil {
			return nil, fmt.Errorf("日期格式应为 %s", dateLayout)
		}
		return text, nil

	case RuleKindDatetime:
		text, err := cast.ToStringE(value)
		if err != nil {
			return nil, fmt.Errorf("日期时间格式应为 %s", datetimeLayout)
		}
		if _, err := time.Parse(datetimeLayout, text); err != nil {
			if _, err := time.Parse(time.RFC3339, text); err != nil {
				return nil, fmt.Errorf("日期时间格式应为 %s", datetimeLayout)
			}
		}
		return text, nil

	case RuleKindBoolean:
		b, err := cast.ToBoolE(value)
		if err != nil {
			return nil, fmt.Errorf("必须是布尔值")
		}
		return b, nil

	case RuleKindIn:
		text, err := cast.ToStringE(value)
		if err != nil {
			return nil, fmt.Errorf("取值不在允许范围内")
		}
		// 选项列表为空时不限制取值
		if len(rule.Options) == 0 {
			return text, nil
		}
		for _, option := range rule.Options {
			if text == option {
				return text, nil
			}
		}
		return nil, fmt.Errorf("取值不在允许范围内")

	default:
		return value, nil
	}
}
