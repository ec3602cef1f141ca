// Package excel renders and parses the users workbook.
package excel

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"go-quickstart/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	SheetName   = "Users"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type column struct {
	header string
	width  float64
}

var userColumns = []column{
	{"ID", 30},
	{"Name", 25},
	{"Email", 30},
	{"Phone", 20},
	{"Role", 15},
	{"Is Admin", 10},
	{"Google ID", 40},
	{"Profile Photo", 50},
	{"Created At", 25},
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func userRow(u models.User) []interface{} {
	role := u.Role
	if role == "" {
		role = models.RoleUser
	}
	createdAt := ""
	if !u.CreatedAt.IsZero() {
		createdAt = u.CreatedAt.UTC().Format(time.RFC3339)
	}
	return []interface{}{
		u.ID.Hex(), u.Name, u.Email, u.Phone, role, yesNo(u.IsAdmin), u.GoogleID, u.PhotoURL(), createdAt,
	}
}

// WriteUsers renders users as an xlsx workbook with a styled header row.
func WriteUsers(w io.Writer, users []models.User) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}

	header := make([]interface{}, len(userColumns))
	for i, col := range userColumns {
		header[i] = col.header
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(SheetName, name, name, col.width); err != nil {
			return err
		}
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return err
	}

	style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DDDDDD"}},
	})
	if err != nil {
		return err
	}
	last, _ := excelize.ColumnNumberToName(len(userColumns))
	if err := f.SetCellStyle(SheetName, "A1", last+"1", style); err != nil {
		return err
	}

	for i, u := range users {
		row := userRow(u)
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	_, err = f.WriteTo(w)
	return err
}

// UsersBytes is WriteUsers into memory.
func UsersBytes(users []models.User) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteUsers(&buf, users); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ImportedUser is one data row of an uploaded workbook.
type ImportedUser struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Role         string `json:"role"`
	IsAdmin      bool   `json:"isAdmin"`
	GoogleID     string `json:"googleId"`
	ProfilePhoto string `json:"profilePhoto"`
}

// User converts the row into a new user document.
func (iu ImportedUser) User() models.User {
	u := models.User{
		Name:         iu.Name,
		Email:        iu.Email,
		Phone:        iu.Phone,
		Role:         iu.Role,
		IsAdmin:      iu.IsAdmin,
		GoogleID:     iu.GoogleID,
		IsActive:     true,
		ProfilePhoto: []models.Photo{},
	}
	if iu.ProfilePhoto != "" {
		u.ProfilePhoto = []models.Photo{{URL: iu.ProfilePhoto}}
	}
	return u
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

// ParseUsers reads the "Users" sheet, or the first sheet, skipping the header row.
func ParseUsers(r io.Reader) ([]ImportedUser, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := SheetName
	if idx, _ := f.GetSheetIndex(SheetName); idx < 0 {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}

	users := []ImportedUser{}
	for i, row := range rows {
		if i == 0 {
			continue
		}
		role := cellAt(row, 4)
		if role == "" {
			role = models.RoleUser
		}
		users = append(users, ImportedUser{
			Name:         cellAt(row, 1),
			Email:        cellAt(row, 2),
			Phone:        cellAt(row, 3),
			Role:         role,
			IsAdmin:      cellAt(row, 5) == "Yes",
			GoogleID:     cellAt(row, 6),
			ProfilePhoto: cellAt(row, 7),
		})
	}
	return users, nil
}
