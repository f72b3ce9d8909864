package tests

import (
	"fmt"
	"go/ast"
	"reflect"
	"testing"

	"gorm.io/relmeta/utils"
)

// AssertObjEqual compares the named fields of r and e
func AssertObjEqual(t *testing.T, r, e interface{}, names ...string) {
	t.Helper()
	for _, name := range names {
		got := reflect.Indirect(reflect.ValueOf(r)).FieldByName(name).Interface()
		expect := reflect.Indirect(reflect.ValueOf(e)).FieldByName(name).Interface()
		t.Run(name, func(t *testing.T) {
			AssertEqual(t, got, expect)
		})
	}
}

// AssertEqual compares got and expect, descending into slices and exported struct fields
func AssertEqual(t *testing.T, got, expect interface{}) {
	t.Helper()
	if reflect.DeepEqual(got, expect) || fmt.Sprint(got) == fmt.Sprint(expect) {
		return
	}

	if reflect.Indirect(reflect.ValueOf(got)).IsValid() != reflect.Indirect(reflect.ValueOf(expect)).IsValid() {
		t.Errorf("%v: expect: %+v, got %+v", utils.FileWithLineNum(), expect, got)
		return
	}

	if got != nil {
		got = reflect.Indirect(reflect.ValueOf(got)).Interface()
	}

	if expect != nil {
		expect = reflect.Indirect(reflect.ValueOf(expect)).Interface()
	}

	gotValue, expectValue := reflect.ValueOf(got), reflect.ValueOf(expect)
	if gotValue.Kind() == reflect.Slice && expectValue.Kind() == reflect.Slice {
		if gotValue.Len() != expectValue.Len() {
			t.Errorf("%v expects length: %v, got %v (expects: %+v, got %+v)", gotValue.Type().Elem().Name(), expectValue.Len(), gotValue.Len(), expect, got)
			return
		}

		for i := 0; i < gotValue.Len(); i++ {
			name := fmt.Sprintf(gotValue.Type().Name()+" #%v", i)
			t.Run(name, func(t *testing.T) {
				AssertEqual(t, gotValue.Index(i).Interface(), expectValue.Index(i).Interface())
			})
		}
		return
	}

	if gotValue.Kind() == reflect.Struct && gotValue.Type() == expectValue.Type() {
		exported := false
		for i := 0; i < gotValue.NumField(); i++ {
			if fieldStruct := gotValue.Type().Field(i); ast.IsExported(fieldStruct.Name) {
				exported = true
				field := gotValue.Field(i)
				t.Run(fieldStruct.Name, func(t *testing.T) {
					AssertEqual(t, field.Interface(), expectValue.Field(i).Interface())
				})
			}
		}

		if exported {
			return
		}
	}

	if gotValue.IsValid() && expectValue.IsValid() && gotValue.Type().ConvertibleTo(expectValue.Type()) {
		if converted := gotValue.Convert(expectValue.Type()).Interface(); fmt.Sprint(converted) == fmt.Sprint(expect) {
			return
		}
	}

	t.Errorf("%v: expect: %#v, got %#v", utils.FileWithLineNum(), expect, got)
}
