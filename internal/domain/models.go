package domain

// Models lists every URS model for AutoMigrate, in FK dependency order.
func Models() []any {
	return []any{
		&Reference{},
		&Bank{},
		&BankBranch{},
		&AgentLevel{},
		&Agent{},
		&Investor{},
		&AgentInvestor{},
		&Fund{},
		&InvestorAccount{},
		&Transaction{},
		&FundNav{},
		&InvestorHolding{},
		&AumInvestorDaily{},
		&AumDaily{},
	}
}
