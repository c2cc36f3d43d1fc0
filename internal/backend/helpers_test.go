package backend

import "finanzas/internal/core"

func sampleTx() core.Transaction {
	return core.Transaction{
		Title:      "Café",
		CategoryID: "cat_1",
		Amount:     -2.5,
		Date:       "2024-06-01",
		Type:       core.Expense,
	}
}
