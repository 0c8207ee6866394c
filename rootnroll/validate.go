package rootnroll

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/go-playground/validator/v10"
)

const tagName = "validate"

// ErrInvalidParams 请求参数校验失败
var ErrInvalidParams = errors.New("rootnroll: invalid params")

var defaultValidator = &paramsValidator{}

// paramsValidator 基于 struct tag 校验请求参数和配置
type paramsValidator struct {
	once     sync.Once
	validate *validator.Validate
}

// Validate 参数验证
func (v *paramsValidator) Validate(obj interface{}) error {
	if obj == nil {
		return nil
	}
	value := reflect.ValueOf(obj)
	switch value.Kind() {
	case reflect.Ptr:
		if value.IsNil() {
			return nil
		}
		return v.Validate(value.Elem().Interface())
	case reflect.Slice, reflect.Array:
		for i := 0; i < value.Len(); i++ {
			if err := v.Validate(value.Index(i).Interface()); err != nil {
				return err
			}
		}
	case reflect.Struct:
		v.lazyInit()
		if err := v.validate.Struct(obj); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidParams, err.Error())
		}
	}

	return nil
}

// lazyInit 延迟初始化
func (v *paramsValidator) lazyInit() {
	v.once.Do(func() {
		v.validate = validator.New()
		v.validate.SetTagName(tagName)
	})
}
