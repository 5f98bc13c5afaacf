package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/vkozyrev/apptbook/internal/client/api"
	"github.com/vkozyrev/apptbook/internal/client/models"
)

// List prints appointments, optionally filtered by status
// (scheduled/cancelled/completed).
func (a *App) List(ctx context.Context, status string) error {
	filter := api.AppointmentFilter{Status: models.AppointmentStatus(status)}

	appts, err := a.client.Appointments(ctx, filter)
	if err != nil {
		reportErr(err)
		return err
	}

	if len(appts) == 0 {
		printlnFn("No appointments.")
		return nil
	}

	for _, appt := range appts {
		printlnFn(fmt.Sprintf("#%d  %s %s  [%s]  %s (%s, %d min)",
			appt.ID, appt.Date, appt.Time, appt.Status, appt.Title, appt.CustomerName, appt.Duration))
	}
	return nil
}

// Add prompts for appointment fields and creates it.
func (a *App) Add(ctx context.Context) error {
	title, err := getSimpleText(a.reader, "Title", os.Stdout)
	if err != nil {
		return err
	}
	date, err := getSimpleText(a.reader, "Date (YYYY-MM-DD)", os.Stdout)
	if err != nil {
		return err
	}
	timeOfDay, err := getSimpleText(a.reader, "Time (HH:MM)", os.Stdout)
	if err != nil {
		return err
	}
	durationText, err := getSimpleText(a.reader, "Duration in minutes [60]", os.Stdout)
	if err != nil {
		return err
	}
	duration := 60
	if durationText != "" {
		duration, err = strconv.Atoi(durationText)
		if err != nil {
			printlnFn("Duration must be a number of minutes.")
			return nil
		}
	}
	customerName, err := getSimpleText(a.reader, "Customer name", os.Stdout)
	if err != nil {
		return err
	}
	customerEmail, err := getSimpleText(a.reader, "Customer email", os.Stdout)
	if err != nil {
		return err
	}
	description, err := GetMultiline(a.reader, "Description (optional)", os.Stdout)
	if err != nil {
		return err
	}

	appt := models.Appointment{
		Title:         title,
		Description:   description,
		Date:          date,
		Time:          timeOfDay,
		Duration:      duration,
		CustomerName:  customerName,
		CustomerEmail: customerEmail,
	}

	created, err := a.client.CreateAppointment(ctx, appt)
	if err != nil {
		reportErr(err)
		return err
	}

	printlnFn(fmt.Sprintf("Created appointment #%d", created.ID))
	return nil
}

func parseID(arg string) (int64, bool) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		printlnFn("Expected a numeric appointment id, got:", arg)
		return 0, false
	}
	return id, true
}

// Cancel marks an appointment cancelled.
func (a *App) Cancel(ctx context.Context, arg string) error {
	id, ok := parseID(arg)
	if !ok {
		return nil
	}

	appt, err := a.client.CancelAppointment(ctx, id)
	if err != nil {
		reportErr(err)
		return err
	}
	printlnFn(fmt.Sprintf("Appointment #%d is now %s", appt.ID, appt.Status))
	return nil
}

// Complete marks an appointment completed.
func (a *App) Complete(ctx context.Context, arg string) error {
	id, ok := parseID(arg)
	if !ok {
		return nil
	}

	appt, err := a.client.CompleteAppointment(ctx, id)
	if err != nil {
		reportErr(err)
		return err
	}
	printlnFn(fmt.Sprintf("Appointment #%d is now %s", appt.ID, appt.Status))
	return nil
}

// Delete removes an appointment permanently.
func (a *App) Delete(ctx context.Context, arg string) error {
	id, ok := parseID(arg)
	if !ok {
		return nil
	}

	if err := a.client.DeleteAppointment(ctx, id); err != nil {
		reportErr(err)
		return err
	}
	printlnFn(fmt.Sprintf("Appointment #%d deleted", id))
	return nil
}

// Stats prints the aggregate appointment counters.
func (a *App) Stats(ctx context.Context) error {
	stats, err := a.client.Stats(ctx)
	if err != nil {
		reportErr(err)
		return err
	}

	printlnFn(fmt.Sprintf("Total: %d  Scheduled: %d  Completed: %d  Cancelled: %d  Today: %d",
		stats.Total, stats.Scheduled, stats.Completed, stats.Cancelled, stats.Today))
	return nil
}
