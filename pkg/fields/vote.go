package fields

// Vote combines per-region triples field by field. Each field takes its most
// frequent non-empty value; ties go to the value seen first.
func Vote(triples []Triple) Triple {
	var products, units, prices []string
	for _, t := range triples {
		products = append(products, t.Product)
		units = append(units, t.Unit)
		prices = append(prices, t.Price)
	}
	return Triple{
		Product: majority(products),
		Unit:    majority(units),
		Price:   majority(prices),
	}
}

func majority(values []string) string {
	counts := map[string]int{}
	var order []string
	for _, v := range values {
		if v == "" {
			continue
		}
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}
	best, bestN := "", 0
	for _, v := range order {
		if counts[v] > bestN {
			best, bestN = v, counts[v]
		}
	}
	return best
}
