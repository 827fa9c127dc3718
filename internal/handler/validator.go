package handler

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
)

// Trans 全局翻译器，response.go 输出参数错误时使用
var Trans ut.Translator

// InitTrans 初始化 validator 错误消息翻译器，locale 取 "zh" 或 "en"
// 邀请码、群名等字段的校验错误以对应语言返回给前端
func InitTrans(locale string) (err error) {
	// Gin v1.9+ 里 binding.Validator 可能尚未初始化
	if binding.Validator == nil {
		binding.Validator = &defaultValidator{validator: validator.New()}
	}
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}

	// 错误消息里用 json tag（join_code）而不是 Go 字段名（JoinCode）
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	zhT := zh.New()
	enT := en.New()
	// 英文兜底，中英都注册
	uni := ut.New(enT, zhT, enT)
	Trans, ok = uni.GetTranslator(locale)
	if !ok {
		return fmt.Errorf("uni.GetTranslator(%s) failed", locale)
	}

	switch locale {
	case "zh":
		err = zh_translations.RegisterDefaultTranslations(v, Trans)
	default:
		err = en_translations.RegisterDefaultTranslations(v, Trans)
	}
	return
}

// RemoveTopStruct 去掉错误 key 里的结构体名前缀，"CreateGroupRequest.name" -> "name"
func RemoveTopStruct(fields map[string]string) map[string]string {
	res := make(map[string]string, len(fields))
	for field, msg := range fields {
		res[field[strings.Index(field, ".")+1:]] = msg
	}
	return res
}

// defaultValidator 最小 StructValidator 实现，仅用于兜底初始化 binding.Validator
type defaultValidator struct {
	validator *validator.Validate
}

func (v *defaultValidator) ValidateStruct(obj interface{}) error {
	return v.validator.Struct(obj)
}

func (v *defaultValidator) Engine() interface{} {
	return v.validator
}
