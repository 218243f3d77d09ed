package sales

import "fmt"

// rule is a single validation predicate. Rules run in order before any
// mutation; the first failing rule aborts the operation.
type rule func() error

func runRules(rules ...rule) error {
	for _, r := range rules {
		if err := r(); err != nil {
			return err
		}
	}
	return nil
}

func notEmpty(field, value string) rule {
	return func() error {
		if value == "" {
			return fmt.Errorf("%w: %s must not be empty", ErrValidation, field)
		}
		return nil
	}
}

func positiveQuantity(quantity int) rule {
	return func() error {
		if quantity <= 0 {
			return fmt.Errorf("%w: quantity must be greater than zero, got %d", ErrValidation, quantity)
		}
		return nil
	}
}

// mutableStatus rejects item mutation on sales in a terminal state.
func mutableStatus(sale *Sale) rule {
	return func() error {
		if sale.Status.terminal() {
			return fmt.Errorf("%w: sale %s is %s and cannot be modified", ErrBusinessRule, sale.ID, sale.Status)
		}
		return nil
	}
}
