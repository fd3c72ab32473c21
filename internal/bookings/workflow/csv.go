package workflow

import (
	"cleanroom/pkg/datetime"
	"cleanroom/pkg/model"
)

var CsvHeader = []string{
	"ID", "Name", "Equipment", "Department", "User Type",
	"Process Summary", "Preferred Date", "Approved Date",
	"Start Time", "End Time", "Status", "Faculty", "Submitted At",
}

// ToCsvRows renders one export row per record, in CsvHeader order.
func ToCsvRows(records []*model.Booking) [][]string {
	rows := make([][]string, 0, len(records))
	for _, b := range records {
		if b == nil {
			continue
		}
		start, end := datetime.NotAvailable, datetime.NotAvailable
		if r := b.ActualTimeRange; r != nil {
			start, end = orNA(r.Start), orNA(r.End)
		}
		rows = append(rows, []string{
			b.ID,
			blankIfPlaceholder(b.Requester.Name),
			blankIfPlaceholder(model.DescribeEquipment(b.Equipment)),
			blankIfPlaceholder(b.Department),
			blankIfPlaceholder(b.UserType),
			blankIfPlaceholder(b.Description),
			datetime.Format(b.PreferredDate),
			datetime.Format(b.ActualDate),
			start,
			end,
			b.Status(),
			blankIfPlaceholder(model.DescribeFaculty(b.Faculty)),
			datetime.Format(b.SubmittedAt),
		})
	}
	return rows
}

func orNA(s string) string {
	if s == "" {
		return datetime.NotAvailable
	}
	return s
}

func blankIfPlaceholder(s string) string {
	if s == model.NotSpecified {
		return ""
	}
	return s
}
