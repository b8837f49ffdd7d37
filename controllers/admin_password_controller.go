package controllers

import (
	"fmt"
	"time"

	"github.com/Nikhil-836/PassRotate/config"
	"github.com/Nikhil-836/PassRotate/models"
	"github.com/Nikhil-836/PassRotate/utils"
	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"
)

// passwordChangeRow is the admin list view over PasswordChange records.
type passwordChangeRow struct {
	UserID      uint                 `json:"user_id"`
	Username    string               `json:"username"`
	Email       string               `json:"email"`
	LastChanged time.Time            `json:"last_changed"`
	Status      utils.PasswordStatus `json:"status"`
}

// ListPasswordChanges returns a paginated admin view of when users last
// changed their passwords, with the current policy status for each.
func ListPasswordChanges(c *gin.Context) {
	utils.LogInfo("ListPasswordChanges called")

	pagination := utils.NewPagination(c)

	var total int64
	if err := config.DB.Model(&models.PasswordChange{}).Count(&total).Error; err != nil {
		utils.LogError("Failed to count password change records: %v", err)
		utils.InternalServerError(c, "Failed to fetch password change records", nil)
		return
	}
	pagination.SetTotal(total)

	var records []models.PasswordChange
	if err := config.DB.Preload("User").
		Order("last_changed DESC").
		Offset(pagination.Offset).
		Limit(pagination.Limit).
		Find(&records).Error; err != nil {
		utils.LogError("Failed to fetch password change records: %v", err)
		utils.InternalServerError(c, "Failed to fetch password change records", nil)
		return
	}

	now := time.Now()
	rows := make([]passwordChangeRow, 0, len(records))
	for _, record := range records {
		result := utils.EvaluatePassword(record.LastChanged, now,
			config.App.RotateAfter, config.App.WarnAfter)
		rows = append(rows, passwordChangeRow{
			UserID:      record.UserID,
			Username:    record.User.Username,
			Email:       record.User.Email,
			LastChanged: record.LastChanged,
			Status:      result.Status(),
		})
	}

	utils.SendPaginatedResponse(c, rows, pagination)
}

// ListPasswordHistory returns a paginated admin view of password history
// entries, newest first, optionally filtered by user. Hashes are never
// serialized.
func ListPasswordHistory(c *gin.Context) {
	utils.LogInfo("ListPasswordHistory called")

	pagination := utils.NewPagination(c)

	query := config.DB.Model(&models.PasswordHistory{})
	if userID := c.Query("user_id"); userID != "" {
		query = query.Where("user_id = ?", userID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.LogError("Failed to count password history entries: %v", err)
		utils.InternalServerError(c, "Failed to fetch password history", nil)
		return
	}
	pagination.SetTotal(total)

	var entries []models.PasswordHistory
	if err := query.Order("created_at DESC").
		Offset(pagination.Offset).
		Limit(pagination.Limit).
		Find(&entries).Error; err != nil {
		utils.LogError("Failed to fetch password history entries: %v", err)
		utils.InternalServerError(c, "Failed to fetch password history", nil)
		return
	}

	utils.SendPaginatedResponse(c, entries, pagination)
}

// ExportPasswordChanges downloads the password change report as Excel.
func ExportPasswordChanges(c *gin.Context) {
	utils.LogInfo("ExportPasswordChanges called")

	var records []models.PasswordChange
	if err := config.DB.Preload("User").
		Order("last_changed DESC").
		Find(&records).Error; err != nil {
		utils.LogError("Failed to fetch password change records for export: %v", err)
		utils.InternalServerError(c, "Failed to fetch password change records", nil)
		return
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Password Changes")
	if err != nil {
		utils.LogError("Failed to create Excel sheet: %v", err)
		utils.InternalServerError(c, "Failed to create Excel sheet", nil)
		return
	}

	header := sheet.AddRow()
	for _, title := range []string{"User ID", "Username", "Email", "Last Changed", "Status"} {
		cell := header.AddCell()
		cell.SetString(title)
		style := xlsx.NewStyle()
		font := xlsx.DefaultFont()
		font.Bold = true
		style.Font = *font
		cell.SetStyle(style)
	}

	now := time.Now()
	for _, record := range records {
		result := utils.EvaluatePassword(record.LastChanged, now,
			config.App.RotateAfter, config.App.WarnAfter)
		row := sheet.AddRow()
		row.AddCell().SetString(fmt.Sprintf("%d", record.UserID))
		row.AddCell().SetString(record.User.Username)
		row.AddCell().SetString(record.User.Email)
		row.AddCell().SetString(record.LastChanged.Format(time.RFC3339))
		row.AddCell().SetString(string(result.Status()))
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=password_changes_%s.xlsx",
		now.Format("2006-01-02")))
	if err := file.Write(c.Writer); err != nil {
		utils.LogError("Failed to write Excel file: %v", err)
		utils.InternalServerError(c, "Failed to write Excel file", nil)
		return
	}
	utils.LogInfo("Successfully exported %d password change records", len(records))
}
