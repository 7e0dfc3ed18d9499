// Package config - Map-Anwendung auf Konfigurations-Structs
//
// MODUL: map
// ZWECK: Befuellt Konfigurations-Structs aus Maps (config.json Inhalte)
// INPUT: Ziel-Struct (Pointer), Map mit JSON-dekodierten Werten
// OUTPUT: Befuelltes Struct
// NEBENEFFEKTE: Keine
// ABHAENGIGKEITEN: reflect (stdlib)
// HINWEISE: JSON dekodiert Zahlen als float64, Arrays als []any
package config

import (
	"fmt"
	"log/slog"
	"reflect"
	"strings"
)

// ApplyMap befuellt die Felder von dst aus der Map m.
// Die Zuordnung erfolgt ueber json-Tags. Unbekannte Keys werden
// ignoriert, da Hub-Konfigurationen regelmaessig zusaetzliche
// Felder tragen (transformers_version, id2label, ...).
// dst muss ein Pointer auf ein Struct sein.
func ApplyMap(dst any, m map[string]any) error {
	valueDst := reflect.ValueOf(dst).Elem() // Feld-Werte des Ziel-Structs
	typeDst := reflect.TypeOf(dst).Elem()   // Feld-Typen des Ziel-Structs

	// Map von json-Tags auf Struct-Felder aufbauen
	jsonFields := make(map[string]reflect.StructField)
	for _, field := range reflect.VisibleFields(typeDst) {
		jsonTag := strings.Split(field.Tag.Get("json"), ",")[0]
		if jsonTag != "" {
			jsonFields[jsonTag] = field
		}
	}

	for key, val := range m {
		fieldInfo, ok := jsonFields[key]
		if !ok {
			slog.Debug("unknown config key", "key", key)
			continue
		}

		field := valueDst.FieldByName(fieldInfo.Name)
		if field.IsValid() && field.CanSet() {
			if val == nil {
				continue
			}

			switch field.Kind() {
			case reflect.Int:
				switch t := val.(type) {
				case int:
					field.SetInt(int64(t))
				case int64:
					field.SetInt(t)
				case float64:
					// JSON dekodiert Zahlen als float64, nicht int
					field.SetInt(int64(t))
				default:
					return fmt.Errorf("config: field %q must be of type integer", key)
				}
			case reflect.Bool:
				val, ok := val.(bool)
				if !ok {
					return fmt.Errorf("config: field %q must be of type boolean", key)
				}
				field.SetBool(val)
			case reflect.Float64:
				switch t := val.(type) {
				case float64:
					field.SetFloat(t)
				case int:
					field.SetFloat(float64(t))
				case int64:
					field.SetFloat(float64(t))
				default:
					return fmt.Errorf("config: field %q must be of type float", key)
				}
			case reflect.String:
				val, ok := val.(string)
				if !ok {
					return fmt.Errorf("config: field %q must be of type string", key)
				}
				field.SetString(val)
			case reflect.Slice:
				slice, err := applySlice(fieldInfo.Type.Elem().Kind(), key, val)
				if err != nil {
					return err
				}
				field.Set(slice)
			default:
				return fmt.Errorf("config: field %q has unsupported type %s", key, field.Kind())
			}
		}
	}

	return nil
}

// applySlice konvertiert einen JSON-Array-Wert in einen typisierten Slice.
// JSON dekodiert Arrays als []any, Elemente als float64 oder string.
func applySlice(elem reflect.Kind, key string, val any) (reflect.Value, error) {
	items, ok := val.([]any)
	if !ok {
		// bereits typisierte Slices durchreichen (z.B. aus ToMap)
		switch t := val.(type) {
		case []int:
			if elem == reflect.Int {
				return reflect.ValueOf(t), nil
			}
		case []float64:
			if elem == reflect.Float64 {
				return reflect.ValueOf(t), nil
			}
		case []string:
			if elem == reflect.String {
				return reflect.ValueOf(t), nil
			}
		}
		return reflect.Value{}, fmt.Errorf("config: field %q must be of type array", key)
	}

	switch elem {
	case reflect.Int:
		slice := make([]int, len(items))
		for i, item := range items {
			switch t := item.(type) {
			case int:
				slice[i] = t
			case float64:
				slice[i] = int(t)
			default:
				return reflect.Value{}, fmt.Errorf("config: field %q must be an array of integers", key)
			}
		}
		return reflect.ValueOf(slice), nil
	case reflect.Float64:
		slice := make([]float64, len(items))
		for i, item := range items {
			switch t := item.(type) {
			case int:
				slice[i] = float64(t)
			case float64:
				slice[i] = t
			default:
				return reflect.Value{}, fmt.Errorf("config: field %q must be an array of floats", key)
			}
		}
		return reflect.ValueOf(slice), nil
	case reflect.String:
		slice := make([]string, len(items))
		for i, item := range items {
			str, ok := item.(string)
			if !ok {
				return reflect.Value{}, fmt.Errorf("config: field %q must be an array of strings", key)
			}
			slice[i] = str
		}
		return reflect.ValueOf(slice), nil
	}

	return reflect.Value{}, fmt.Errorf("config: field %q has unsupported array type %s", key, elem)
}
