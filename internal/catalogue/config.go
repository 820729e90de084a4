package catalogue

import "github.com/wonny/investsim/internal/contracts"

// File is the on-disk catalogue document
type File struct {
	Version     int            `yaml:"version" json:"version"`
	FixedIncome []ProductEntry `yaml:"fixed_income" json:"fixed_income"`
	Funds       []ProductEntry `yaml:"funds" json:"funds"`
}

// ProductEntry is one product line in the catalogue file
type ProductEntry struct {
	Name        string  `yaml:"name" json:"name"`
	MonthlyRate float64 `yaml:"monthly_rate" json:"monthly_rate"` // 0.11 = 11% a.m.
}

// Default returns the built-in simulated products
func Default() *File {
	return &File{
		Version: 1,
		FixedIncome: []ProductEntry{
			{Name: "CDB 110% CDI", MonthlyRate: 0.11},
			{Name: "LCI 100% CDI", MonthlyRate: 0.10},
			{Name: "CDB 120% CDI", MonthlyRate: 0.12},
		},
		Funds: []ProductEntry{
			{Name: "Fundo Ações", MonthlyRate: 0.08},
			{Name: "Fundo Renda Fixa", MonthlyRate: 0.05},
			{Name: "Fundo Multimercado", MonthlyRate: 0.07},
		},
	}
}

// Products returns the entries of class as contract products, file order kept
func (f *File) Products(class contracts.AssetClass) []contracts.Product {
	var entries []ProductEntry
	switch class {
	case contracts.ClassFixedIncome:
		entries = f.FixedIncome
	case contracts.ClassFund:
		entries = f.Funds
	}

	out := make([]contracts.Product, 0, len(entries))
	for _, e := range entries {
		out = append(out, contracts.Product{Name: e.Name, Class: class, MonthlyRate: e.MonthlyRate})
	}
	return out
}
