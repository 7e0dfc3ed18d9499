// format.go - Formatierung grosser Zahlen
// Hauptfunktion: HumanNumber (Parameter-Anzahlen wie "102M", "1.2B")
package format

import (
	"fmt"
	"math"
)

const (
	Thousand = 1000
	Million  = Thousand * 1000
	Billion  = Million * 1000
)

// HumanNumber formatiert eine Zahl kompakt mit K/M/B Suffix.
// Werte unter 1000 werden unveraendert ausgegeben.
func HumanNumber(b uint64) string {
	switch {
	case b >= Billion:
		number := float64(b) / Billion
		if number == math.Floor(number) {
			return fmt.Sprintf("%.0fB", number)
		}
		return fmt.Sprintf("%.1fB", number)
	case b >= Million:
		number := float64(b) / Million
		if number == math.Floor(number) {
			return fmt.Sprintf("%.0fM", number)
		}
		return fmt.Sprintf("%.1fM", number)
	case b >= Thousand:
		number := float64(b) / Thousand
		if number == math.Floor(number) {
			return fmt.Sprintf("%.0fK", number)
		}
		return fmt.Sprintf("%.1fK", number)
	default:
		return fmt.Sprintf("%d", b)
	}
}
