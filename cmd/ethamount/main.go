package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/chronodrachma/ethamount/pkg/config"
	"github.com/chronodrachma/ethamount/pkg/core/types"
	"github.com/chronodrachma/ethamount/pkg/ledger"
	"github.com/chronodrachma/ethamount/pkg/rpc"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: ethamount [convert|math|balance|credit|transfer|serve] <args>")
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "convert":
		err = runConvert(os.Args[2:], os.Stdout)
	case "math":
		err = runMath(os.Args[2:], os.Stdout)
	case "balance":
		err = runBalance(os.Args[2:])
	case "credit":
		err = runCredit(os.Args[2:])
	case "transfer":
		err = runTransfer(os.Args[2:])
	case "serve":
		err = runServe(os.Args[2:])
	default:
		fmt.Println("Unknown command:", os.Args[1])
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("%s: %v", os.Args[1], err)
	}
}

func runConvert(args []string, out io.Writer) error {
	cmd := flag.NewFlagSet("convert", flag.ContinueOnError)
	eth := cmd.Float64("ether", 0, "Decimal ETH value to convert (approximate)")
	wei := cmd.String("wei", "", "Exact wei value to convert")
	if err := cmd.Parse(args); err != nil {
		return err
	}

	set := map[string]bool{}
	cmd.Visit(func(f *flag.Flag) { set[f.Name] = true })

	var (
		amount types.Amount
		err    error
	)
	switch {
	case set["wei"] && set["ether"]:
		return fmt.Errorf("-ether and -wei are mutually exclusive")
	case set["wei"]:
		amount, err = types.ParseWei(*wei)
	case set["ether"]:
		amount, err = types.NewAmountFromEther(*eth)
	default:
		return fmt.Errorf("one of -ether or -wei is required")
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(out, amount)
	return nil
}

func runMath(args []string, out io.Writer) error {
	cmd := flag.NewFlagSet("math", flag.ContinueOnError)
	op := cmd.String("op", "add", "Operation: add, sub, mul, div or scale")
	a := cmd.String("a", "0", "Left operand in wei")
	b := cmd.String("b", "0", "Right operand in wei (scalar for scale)")
	if err := cmd.Parse(args); err != nil {
		return err
	}

	left, err := types.ParseWei(*a)
	if err != nil {
		return err
	}

	var result types.Amount
	if *op == "scale" {
		n, perr := strconv.ParseUint(*b, 10, 64)
		if perr != nil {
			return fmt.Errorf("invalid scalar %q: %w", *b, perr)
		}
		result, err = left.MulScalar(n)
	} else {
		right, perr := types.ParseWei(*b)
		if perr != nil {
			return perr
		}
		switch *op {
		case "add":
			result, err = left.Add(right)
		case "sub":
			result, err = left.Sub(right)
		case "mul":
			result, err = left.Mul(right)
		case "div":
			result, err = left.Div(right)
		default:
			return fmt.Errorf("unknown operation %q", *op)
		}
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(out, result)
	return nil
}

func openLedger(dataDir string) (*ledger.BadgerStore, error) {
	store, err := ledger.NewBadgerStore(dataDir)
	if err != nil {
		return nil, err
	}
	allocs, err := config.DevnetConfig.Allocations()
	if err != nil {
		store.Close()
		return nil, err
	}
	if err := store.Genesis(allocs); err != nil && err != ledger.ErrLedgerAlreadyInitialized {
		store.Close()
		return nil, fmt.Errorf("init genesis: %w", err)
	}
	return store, nil
}

func runBalance(args []string) error {
	cmd := flag.NewFlagSet("balance", flag.ExitOnError)
	dataDir := cmd.String("datadir", "ethamount-data", "Ledger directory")
	addrHex := cmd.String("addr", "", "Account address (hex)")
	cmd.Parse(args)

	addr, err := types.AddressFromHex(*addrHex)
	if err != nil {
		return err
	}
	store, err := openLedger(*dataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	bal, err := store.Balance(addr)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %s\n", addr, bal)
	return nil
}

func runCredit(args []string) error {
	cmd := flag.NewFlagSet("credit", flag.ExitOnError)
	dataDir := cmd.String("datadir", "ethamount-data", "Ledger directory")
	addrHex := cmd.String("addr", "", "Account address (hex)")
	wei := cmd.String("wei", "", "Amount to credit in wei")
	cmd.Parse(args)

	addr, err := types.AddressFromHex(*addrHex)
	if err != nil {
		return err
	}
	amount, err := types.ParseWei(*wei)
	if err != nil {
		return err
	}
	store, err := openLedger(*dataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Credit(addr, amount); err != nil {
		return err
	}
	log.Printf("Credited %s with %s", addr, amount)
	return nil
}

func runTransfer(args []string) error {
	cmd := flag.NewFlagSet("transfer", flag.ExitOnError)
	dataDir := cmd.String("datadir", "ethamount-data", "Ledger directory")
	fromHex := cmd.String("from", "", "Sender address (hex)")
	toHex := cmd.String("to", "", "Recipient address (hex)")
	wei := cmd.String("wei", "", "Amount to send in wei")
	feeWei := cmd.String("fee", "0", "Fee to burn in wei")
	cmd.Parse(args)

	from, err := types.AddressFromHex(*fromHex)
	if err != nil {
		return fmt.Errorf("from: %w", err)
	}
	to, err := types.AddressFromHex(*toHex)
	if err != nil {
		return fmt.Errorf("to: %w", err)
	}
	amount, err := types.ParseWei(*wei)
	if err != nil {
		return err
	}
	fee, err := types.ParseWei(*feeWei)
	if err != nil {
		return err
	}
	store, err := openLedger(*dataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Transfer(from, to, amount, fee); err != nil {
		return err
	}
	log.Printf("Transferred %s from %s to %s (fee %s)", amount, from, to, fee)
	return nil
}

func runServe(args []string) error {
	cfg := config.DevnetConfig
	cmd := flag.NewFlagSet("serve", flag.ExitOnError)
	dataDir := cmd.String("datadir", cfg.DataDir, "Ledger directory (empty for in-memory)")
	rpcAddr := cmd.String("rpc", cfg.RPCAddr, "RPC listen address")
	cmd.Parse(args)

	log.Printf("Starting %s ledger (%s)...", cfg.Name, cfg.Symbol)

	store, err := openLedger(*dataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	supply, err := store.TotalSupply()
	if err != nil {
		return err
	}
	log.Printf("Total supply: %s", supply)

	server := rpc.NewServer(store)
	go func() {
		log.Printf("RPC listening on %s", *rpcAddr)
		if err := server.Start(*rpcAddr); err != nil {
			log.Printf("RPC server error: %v", err)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	log.Println("Shutting down...")
	return nil
}
