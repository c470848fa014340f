package main

import (
	"dronetracker/internal/repository/sqlite"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"
	"time"
)

func main() {
	dbPath := flag.String("db", "data/flights.db", "Database path")
	flightID := flag.Int64("id", 0, "Print the ticks of this flight instead of the flight list")
	limit := flag.Int("limit", 20, "Maximum number of rows to print (0 for all)")
	flag.Parse()

	if err := run(os.Stdout, *dbPath, *flightID, *limit); err != nil {
		log.Fatal(err)
	}
}

// run prints the flight list, or the ticks of one flight when flightID is set.
func run(out io.Writer, dbPath string, flightID int64, limit int) error {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return fmt.Errorf("database %s does not exist", dbPath)
	}

	db, err := sqlite.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if flightID > 0 {
		err = printTicks(w, db, flightID, limit)
	} else {
		err = printFlights(w, db, limit)
	}
	if err != nil {
		return err
	}
	return w.Flush()
}

func printFlights(w io.Writer, db *sqlite.DB, limit int) error {
	flights, err := sqlite.NewFlightRepository(db).GetAll(limit)
	if err != nil {
		return fmt.Errorf("failed to list flights: %w", err)
	}
	if len(flights) == 0 {
		fmt.Fprintln(w, "No flights recorded")
		return nil
	}

	fmt.Fprintln(w, "ID\tUUID\tBACKEND\tBATTERY\tSTARTED\tDURATION\tTICKS")
	for _, f := range flights {
		duration := "in flight"
		if f.EndedAt != nil {
			duration = f.EndedAt.Sub(f.StartedAt).Round(time.Second).String()
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d%%\t%s\t%s\t%d\n",
			f.ID, f.UUID, f.Backend, f.Battery, f.StartedAt.Local().Format(time.DateTime), duration, f.Ticks)
	}
	return nil
}

func printTicks(w io.Writer, db *sqlite.DB, flightID int64, limit int) error {
	flight, err := sqlite.NewFlightRepository(db).GetByID(flightID)
	if err != nil {
		return fmt.Errorf("failed to get flight %d: %w", flightID, err)
	}
	if flight == nil {
		return fmt.Errorf("flight %d not found", flightID)
	}

	ticks, err := sqlite.NewTickRepository(db).GetByFlightID(flightID, limit)
	if err != nil {
		return fmt.Errorf("failed to get ticks: %w", err)
	}

	fmt.Fprintf(w, "Flight %d (%s), %s detector\n\n", flight.ID, flight.UUID, flight.Backend)
	fmt.Fprintln(w, "SEQ\tTIME\tFACES\tTARGET\tCX\tERROR\tSPEED\tCOMMAND")
	for _, t := range ticks {
		target := "-"
		if t.TargetPresent {
			target = fmt.Sprintf("%.0f", t.Size)
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%.1f\t%.1f\t%d\t%s\n",
			t.Seq, t.Timestamp.Local().Format("15:04:05.000"), t.Detections, target, t.CX, t.Error, t.Actuation, t.Command)
	}
	return nil
}
