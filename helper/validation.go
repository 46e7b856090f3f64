package helper

import (
	"fmt"
	"reflect"
	"strings"
)

// ValidateStructIsPopulated will check if any mandatory fields in cfg are missing.
// It uses struct tags to determine which fields are mandatory and the error text to fetch.
// The error text returned is just a list of the struct tags with key "errorTxt".
func ValidateStructIsPopulated(cfg interface{}) (err error) {
	errs := make([]string, 0)
	GetStructErrorTxt4UnsetFields(cfg, &errs)
	if len(errs) > 0 {
		err = fmt.Errorf("please supply values for %v", strings.Join(errs, ", "))
	}
	return
}

// GetStructErrorTxt4UnsetFields will reflect over interface i and build a slice containing error text strings for any
// struct fields that are unset i.e. are the zero value for the given field type.
// The error text strings are fetched from the errorTxt tag values found in the supplied interface (struct)
// where tag mandatory:"yes" is set.
func GetStructErrorTxt4UnsetFields(i interface{}, errTags *[]string) {
	val := reflect.ValueOf(i)
	if reflect.TypeOf(i).Kind() == reflect.Ptr {
		val = val.Elem()
	}
	typ := val.Type()
	for idx := 0; idx < val.NumField(); idx++ { // for each field in the value/struct...
		f := val.Field(idx)
		firstChar := typ.Field(idx).Name[0:1]
		if firstChar == strings.ToUpper(firstChar) { // if the field is exported...
			switch f.Type().Kind() {
			case reflect.Struct: // if we are looking at a nested struct and need to go down another level...
				GetStructErrorTxt4UnsetFields(f.Interface(), errTags)
			case reflect.Slice, reflect.Map:
			default: // extract tags from this struct field...
				if f.Interface() == reflect.Zero(f.Type()).Interface() &&
					typ.Field(idx).Tag.Get("mandatory") == "yes" { // if the field is its zero value and it is mandatory...
					*errTags = append(*errTags, typ.Field(idx).Tag.Get("errorTxt"))
				}
			}
		}
	}
}
