package e

import "fmt"

// Wrap はエラーに発生箇所を付けて包む
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
