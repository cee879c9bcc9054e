package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/internal/evaluator"
	"github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/internal/source"
	"github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/pkg/grpc"
	"github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/pkg/proto"
)

func main() {
	sPath := flag.String("s", "", "path to the first ranking (JSON array or one item per line)")
	tPath := flag.String("t", "", "path to the second ranking")
	measure := flag.String("measure", "rbo", "similarity measure: rbo, rbo_ext, or kendall")
	depth := flag.Int("k", 0, "evaluation depth for rbo (0 = length of the shorter list)")
	persistence := flag.Float64("p", 0, "persistence parameter (0 = measure default)")
	extrapolate := flag.Bool("ext", false, "extrapolate the fixed-depth measure past the evaluated depth")
	progress := flag.Bool("progress", false, "print progress while walking the rankings")
	remote := flag.String("remote", "", "score via a running evaluator RPC endpoint (host:port)")
	flag.Parse()

	if *sPath == "" || *tPath == "" {
		fmt.Fprintln(os.Stderr, "both -s and -t ranking files are required")
		flag.Usage()
		os.Exit(2)
	}

	logger.Setup("warn", "text")

	sItems, err := source.ReadFile(*sPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	tItems, err := source.ReadFile(*tPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	fmt.Println("=== Ranking Comparison ===")
	fmt.Printf("S:       %s (%d items)\n", *sPath, len(sItems))
	fmt.Printf("T:       %s (%d items)\n", *tPath, len(tItems))
	fmt.Printf("Measure: %s\n", *measure)
	if *remote != "" {
		fmt.Printf("Remote:  %s\n", *remote)
	}
	fmt.Println()

	req := evaluator.Request{
		S:           sItems,
		T:           tItems,
		Measure:     evaluator.Measure(*measure),
		Depth:       *depth,
		Persistence: *persistence,
		Extrapolate: *extrapolate,
	}

	var result *evaluator.Result
	if *remote != "" {
		result, err = compareRemote(*remote, req)
	} else {
		result, err = compareLocal(req, *progress)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "comparison failed: %v\n", err)
		os.Exit(1)
	}

	printResult(result)
}

func compareLocal(req evaluator.Request, progress bool) (*evaluator.Result, error) {
	eval := evaluator.New(config.EvaluatorConfig{})
	if !progress {
		return eval.Compare(context.Background(), req)
	}
	return eval.CompareWithProgress(context.Background(), req, printProgress)
}

func compareRemote(addr string, req evaluator.Request) (*evaluator.Result, error) {
	client, err := grpc.Dial(addr)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	var resp proto.CompareResponse
	err = client.Call("Evaluator.Compare", &proto.CompareRequest{
		S:           stringItems(req.S),
		T:           stringItems(req.T),
		Measure:     string(req.Measure),
		Depth:       int32(req.Depth),
		Persistence: req.Persistence,
		Extrapolate: req.Extrapolate,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &evaluator.Result{
		Measure:      evaluator.Measure(resp.Measure),
		Score:        resp.Score,
		SLength:      int(resp.SLength),
		TLength:      int(resp.TLength),
		Common:       int(resp.Common),
		SCoverage:    resp.SCoverage,
		TCoverage:    resp.TCoverage,
		Depth:        int(resp.Depth),
		Persistence:  resp.Persistence,
		Extrapolated: resp.Extrapolated,
		LatencyMs:    resp.LatencyMs,
	}, nil
}

// stringItems renders items for the string-typed RPC surface.
func stringItems(items []any) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = fmt.Sprint(item)
	}
	return out
}

func printProgress(pct int) {
	fmt.Printf("\rCurrent progress: %d %%...", pct)
	if pct >= 100 {
		fmt.Println()
		fmt.Println("Finished!")
	}
}

func printResult(result *evaluator.Result) {
	fmt.Println("=== Results ===")
	fmt.Printf("Measure:      %s\n", result.Measure)
	fmt.Printf("Score:        %.6f\n", result.Score)
	if result.Depth > 0 {
		fmt.Printf("Depth:        %d\n", result.Depth)
	}
	if result.Persistence > 0 {
		fmt.Printf("Persistence:  %g\n", result.Persistence)
	}
	fmt.Printf("Extrapolated: %t\n", result.Extrapolated)
	fmt.Println()

	fmt.Println("=== Coverage ===")
	fmt.Printf("Common items: %d\n", result.Common)
	fmt.Printf("S coverage:   %.1f%%\n", result.SCoverage*100)
	fmt.Printf("T coverage:   %.1f%%\n", result.TCoverage*100)
}
