// Command recount_usage rebuilds users' generation counters from the usage
// record log. Run it after a storage outage left counters behind the log.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/internal/config"
	"github.com/sinchusuresh/Ai-margeting-agents-main-sub000/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type counts struct {
	UserID  uint
	Total   int64
	Monthly int64
}

func main() {
	apply := flag.Bool("apply", false, "write the recomputed counters (default is a dry run)")
	flag.Parse()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	db, err := models.Open(&cfg.Database, logger.Warn)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	fmt.Println("Connected to database successfully!")
	fmt.Println("")

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	// Only attempts that delivered a payload count.
	var rows []counts
	err = db.Model(&models.UsageRecord{}).
		Select("user_id, COUNT(*) AS total, SUM(CASE WHEN created_at >= ? THEN 1 ELSE 0 END) AS monthly", monthStart).
		Where("status IN ?", []string{models.UsageStatusSuccess, models.UsageStatusDegraded}).
		Group("user_id").
		Scan(&rows).Error
	if err != nil {
		log.Fatalf("Failed to aggregate usage records: %v", err)
	}

	var users []models.User
	if err := db.Select("id, email, total_generations, monthly_generations").Find(&users).Error; err != nil {
		log.Fatalf("Failed to query users: %v", err)
	}
	byUser := make(map[uint]counts, len(rows))
	for _, r := range rows {
		byUser[r.UserID] = r
	}

	fmt.Printf("%-6s %-40s %-18s %-18s\n", "ID", "Email", "Total (now/log)", "Monthly (now/log)")
	fmt.Println("------------------------------------------------------------------------------------")
	var drifted []models.User
	for _, u := range users {
		c := byUser[u.ID]
		if c.Total == u.TotalGenerations && c.Monthly == u.MonthlyGenerations {
			continue
		}
		fmt.Printf("%-6d %-40s %-18s %-18s\n", u.ID, u.Email,
			fmt.Sprintf("%d/%d", u.TotalGenerations, c.Total),
			fmt.Sprintf("%d/%d", u.MonthlyGenerations, c.Monthly))
		drifted = append(drifted, u)
	}
	fmt.Println("")
	fmt.Printf("Users with drifted counters: %d of %d\n", len(drifted), len(users))

	if !*apply || len(drifted) == 0 {
		fmt.Println("Dry run; pass -apply to write counters.")
		return
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		for _, u := range drifted {
			c := byUser[u.ID]
			if err := tx.Model(&models.User{}).Where("id = ?", u.ID).UpdateColumns(map[string]interface{}{
				"total_generations":   c.Total,
				"monthly_generations": c.Monthly,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Failed to update counters: %v", err)
	}
	fmt.Printf("Updated %d users.\n", len(drifted))
}
