//go:build ignore
// +build ignore

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gitlab.com/hmwai/subtrack/internal/charts"
	"gitlab.com/hmwai/subtrack/internal/models"
)

func main() {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	chargeList := []models.Charge{
		{Name: "Netflix", Price: decimal.NewFromFloat(15.99), BillingCycle: models.CycleMonthly, Category: "Entertainment", StartDate: start, Active: true},
		{Name: "Spotify", Price: decimal.NewFromFloat(143.88), BillingCycle: models.CycleYearly, Category: "Music", StartDate: start, Active: true},
		{Name: "Car insurance", Price: decimal.NewFromFloat(420.00), BillingCycle: models.CycleHalfYearly, Category: "Insurance", StartDate: start, Active: true},
		{Name: "Electricity", Price: decimal.NewFromFloat(85.00), BillingCycle: models.CycleMonthly, Category: "Utilities", StartDate: start, Active: true},
		{Name: "Gym", Price: decimal.NewFromFloat(35.00), BillingCycle: models.CycleEvery28, Category: "Fitness", StartDate: start, Active: true},
	}

	chartData, err := charts.GenerateCategoryChart(chargeList, "Monthly Spend by Category")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile("chart.png", chartData, 0600); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("✓ Created chart.png - Example category breakdown chart")
}
