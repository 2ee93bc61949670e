package api

import (
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"issue_backend/internal/shared/optional"
)

var registerOnce sync.Once

// RegisterValidators はGinのバリデーターに以下を設定します。
//   - エラー上のフィールド名をjsonタグ名にする
//   - optional.Value をその中身として検証する（未指定・nullは omitempty でスキップ、"" は検証する）
//
// 何度呼んでも一度だけ登録されます。
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
		v.RegisterCustomTypeFunc(optionalValue, optional.Value[string]{})
	})
}

func optionalValue(field reflect.Value) any {
	if v, ok := field.Interface().(interface{ ValidationValue() any }); ok {
		return v.ValidationValue()
	}
	return nil
}
