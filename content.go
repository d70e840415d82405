package plantimg

import (
	"fmt"
	"reflect"
	"strings"
)

// Content normalizes diagram content into a single string. Strings are used
// as they are, slices and arrays are joined in order with no separator, and
// everything else uses its string representation. A nil value is empty.
func Content(v interface{}) string {
	// a nil pointer may still satisfy fmt.Stringer through a value method
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Ptr && rv.IsNil() {
		return ""
	}

	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case []byte:
		return string(c)
	case []string:
		return strings.Join(c, "")
	case fmt.Stringer:
		return c.String()
	case error:
		return c.Error()
	}

	rv := reflect.ValueOf(v)
	if k := rv.Kind(); k == reflect.Slice || k == reflect.Array {
		var sb strings.Builder
		for i := 0; i < rv.Len(); i++ {
			sb.WriteString(Content(rv.Index(i).Interface()))
		}
		return sb.String()
	}
	return fmt.Sprint(v)
}
