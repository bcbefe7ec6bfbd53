// Package main provides the bookyardctl CLI for maintaining and inspecting
// bookyard stores.
//
// Usage:
//
//	bookyardctl --store=<path> <command> [options]
//
// Commands:
//
//	tables          List the store's tables
//	dump <table>    Dump a table's raw field/value pairs
//	flush           Flush all tables to stable storage
//	compact         Compact all tables and wait for completion
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/aalhour/rockyardkv/db"

	"github.com/aalhour/bookyard"
)

var (
	storePath   = flag.String("store", "", "Path to the store (required)")
	extraTables = flag.String("tables", "", "Comma-separated extra table names")
	hexOutput   = flag.Bool("hex", false, "Output keys and values in hex format")
	limit       = flag.Int("limit", 0, "Limit number of dumped entries (0 = unlimited)")
	reverse     = flag.Bool("reverse", false, "Dump in reverse key order")
	help        = flag.Bool("help", false, "Print help")
)

func main() {
	flag.Parse()

	if *help || len(flag.Args()) == 0 {
		printUsage()
		return
	}

	if *storePath == "" {
		fmt.Fprintln(os.Stderr, "Error: --store flag is required")
		os.Exit(1)
	}

	command := flag.Arg(0)
	args := flag.Args()[1:]

	var err error
	switch command {
	case "tables":
		err = cmdTables()
	case "dump":
		err = cmdDump(args)
	case "flush":
		err = cmdFlush()
	case "compact":
		err = cmdCompact()
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func declaredTables() []string {
	if *extraTables == "" {
		return nil
	}
	return strings.Split(*extraTables, ",")
}

func openAdmin() (*bookyard.Admin, error) {
	return bookyard.OpenAdmin(*storePath, declaredTables(), nil)
}

func cmdTables() error {
	engine, err := db.OpenForReadOnly(*storePath, nil, false)
	if err != nil {
		return err
	}
	defer engine.Close()

	for _, name := range engine.ListColumnFamilies() {
		fmt.Println(name)
	}
	return nil
}

func cmdDump(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("dump requires exactly one table name")
	}
	table := args[0]

	engine, err := db.OpenForReadOnly(*storePath, nil, false)
	if err != nil {
		return err
	}
	defer engine.Close()

	cf := engine.GetColumnFamily(table)
	if cf == nil {
		return fmt.Errorf("table %q does not exist", table)
	}

	it := engine.NewIteratorCF(nil, cf)
	defer it.Close()

	count := 0
	if *reverse {
		it.SeekToLast()
	} else {
		it.SeekToFirst()
	}
	for ; it.Valid(); next(it) {
		fmt.Printf("%s : %s\n", format(it.Key()), format(it.Value()))
		count++
		if *limit > 0 && count >= *limit {
			break
		}
	}
	if err := it.Error(); err != nil {
		return err
	}
	fmt.Printf("%d entr%s in %q\n", count, pluralY(count), table)
	return nil
}

func next(it db.Iterator) {
	if *reverse {
		it.Prev()
	} else {
		it.Next()
	}
}

func cmdFlush() error {
	admin, err := openAdmin()
	if err != nil {
		return err
	}
	defer admin.Close()

	if err := admin.Flush(); err != nil {
		return err
	}
	fmt.Printf("flushed %d table(s)\n", len(admin.Tables()))
	return nil
}

func cmdCompact() error {
	admin, err := openAdmin()
	if err != nil {
		return err
	}
	defer admin.Close()

	if err := admin.Compact(); err != nil {
		return err
	}
	fmt.Println("compaction complete")
	return nil
}

func format(b []byte) string {
	if *hexOutput {
		return hex.EncodeToString(b)
	}
	return fmt.Sprintf("%q", b)
}

func pluralY(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}

func printUsage() {
	fmt.Println(`bookyardctl - bookyard store maintenance tool

Usage:
  bookyardctl --store=<path> <command> [options]

Commands:
  tables          List the store's tables
  dump <table>    Dump a table's raw field/value pairs
  flush           Flush all tables to stable storage
  compact         Compact all tables and wait for completion

Options:`)
	flag.PrintDefaults()
}
