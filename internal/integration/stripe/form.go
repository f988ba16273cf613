package stripe

import (
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strings"
)

// FormValue пара ключ-значение form-urlencoded тела
type FormValue struct {
	Key   string
	Value string
}

// FlattenForm разворачивает значение в плоский список пар ключ-значение
// со скобочной нотацией вложенности, которую ожидает API Stripe:
//
//	{line_items: [{price: "p1", quantity: 2}]} ->
//	line_items[0][price]=p1, line_items[0][quantity]=2
//
// Порядок пар детерминирован: поля структур идут в порядке объявления,
// элементы срезов по индексу, ключи map по алфавиту. Наивная JSON-сериализация
// здесь не подходит: Stripe принимает только PHP-стиль вложенных форм.
func FlattenForm(v any) []FormValue {
	var out []FormValue
	flattenValue("", reflect.ValueOf(v), &out)
	return out
}

// EncodeForm кодирует пары в form-urlencoded строку, сохраняя их порядок
func EncodeForm(values []FormValue) string {
	parts := make([]string, 0, len(values))
	for _, fv := range values {
		parts = append(parts, url.QueryEscape(fv.Key)+"="+url.QueryEscape(fv.Value))
	}
	return strings.Join(parts, "&")
}

func flattenValue(prefix string, rv reflect.Value, out *[]FormValue) {
	if !rv.IsValid() {
		return
	}

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return
		}
		flattenValue(prefix, rv.Elem(), out)

	case reflect.Struct:
		t := rv.Type()
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}

			name, omitEmpty := parseFormTag(field)
			if name == "-" {
				continue
			}

			fv := rv.Field(i)
			if omitEmpty && fv.IsZero() {
				continue
			}

			flattenValue(childKey(prefix, name), fv, out)
		}

	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			flattenValue(fmt.Sprintf("%s[%d]", prefix, i), rv.Index(i), out)
		}

	case reflect.Map:
		// Ключи map сортируются для детерминированного вывода
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, fmt.Sprintf("%v", k.Interface()))
		}
		sort.Strings(keys)
		for _, k := range keys {
			flattenValue(childKey(prefix, k), rv.MapIndex(reflect.ValueOf(k)), out)
		}

	case reflect.Bool:
		*out = append(*out, FormValue{Key: prefix, Value: fmt.Sprintf("%t", rv.Bool())})

	default:
		*out = append(*out, FormValue{Key: prefix, Value: fmt.Sprintf("%v", rv.Interface())})
	}
}

// childKey строит вложенный ключ: верхний уровень без скобок, ниже — в скобках
func childKey(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "[" + name + "]"
}

// parseFormTag читает тег form поля структуры
func parseFormTag(field reflect.StructField) (name string, omitEmpty bool) {
	tag := field.Tag.Get("form")
	if tag == "" {
		return field.Name, false
	}

	parts := strings.Split(tag, ",")
	name = parts[0]
	if name == "" {
		name = field.Name
	}
	for _, opt := range parts[1:] {
		if opt == "omitempty" {
			omitEmpty = true
		}
	}
	return name, omitEmpty
}
