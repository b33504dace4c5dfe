package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/uniexams/examtimetabling/internal/instancegen"
	"github.com/uniexams/examtimetabling/pkg/model"
)

type TestMetadata struct {
	Name          string
	Students      int
	Exams         int
	Slots         int
	Rooms         int
	Registrations int
	Instance      *model.Instance
}

type BenchmarkResult struct {
	Test      TestMetadata
	Workers   int
	Status    string
	Duration  int64
	Decisions int
	Conflicts int
	Removals  int
}

var (
	directory   = flag.String("dir", "", "directory with instance files to benchmark")
	generate    = flag.Int("generate", 25, "number of random instances to add")
	seed        = flag.Int64("seed", 1, "seed for the random instances")
	workersList = flag.String("workers", "1", "comma-separated worker counts to benchmark")
	timeout     = flag.Duration("timeout", 30*time.Second, "time budget per solve")
	outFile     = flag.String("out", "benchmark_results.csv", "path of the CSV results file")
)

func main() {
	flag.Parse()

	workerCounts, err := parseWorkers(*workersList)
	if err != nil {
		log.Fatalf("invalid workers list: %v", err)
	}

	tests := getTests()
	results := make([]BenchmarkResult, 0, len(tests)*len(workerCounts))
	for _, test := range tests {
		for _, workers := range workerCounts {
			fmt.Printf("Benchmarking instance \"%v\" with %v worker(s)\n", test.Name, workers)
			results = append(results, measure(test, workers))
		}
	}

	toCsv(results)
}

func getTests() []TestMetadata {
	tests := make([]TestMetadata, 0, *generate)

	if *directory != "" {
		testFiles, err := os.ReadDir(*directory)
		if err != nil {
			log.Fatalf("cannot read directory: %v", err)
		}
		filenames := lo.Map(testFiles, func(file os.DirEntry, _ int) string {
			return filepath.Join(*directory, file.Name())
		})
		for _, filename := range filenames {
			var (
				instance *model.Instance
				err      error
			)
			if strings.HasSuffix(filename, ".json") {
				instance, err = model.InstanceFromJson(filename)
			} else {
				instance, err = model.InstanceFromFile(filename)
			}
			if err != nil {
				log.Fatalf("cannot parse input file: %v", err)
			}
			tests = append(tests, metadataOf(filename, instance))
		}
	}

	r := rand.New(rand.NewSource(*seed))
	for i := 0; i < *generate; i++ {
		raw := instancegen.Generate(r, instancegen.DefaultParams)
		instance, err := model.NewInstance(raw)
		if err != nil {
			log.Fatalf("cannot build generated instance: %v", err)
		}
		tests = append(tests, metadataOf(fmt.Sprintf("generated-%03d", i), instance))
	}

	return tests
}

func metadataOf(name string, instance *model.Instance) TestMetadata {
	return TestMetadata{
		Name:          name,
		Students:      instance.Students,
		Exams:         instance.Exams,
		Slots:         instance.Slots,
		Rooms:         instance.Rooms,
		Registrations: instance.Registrations(),
		Instance:      instance,
	}
}

func measure(test TestMetadata, workers int) BenchmarkResult {
	timetabler := model.NewTimetabler(nil)
	if workers > 1 {
		timetabler = model.NewParallelTimetabler(nil, workers)
	}
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	start := time.Now()
	result, err := timetabler.Build(ctx, test.Instance)
	if err != nil {
		log.Fatalf("cannot solve instance %q: %v", test.Name, err)
	}
	duration := time.Since(start).Milliseconds()

	return BenchmarkResult{
		Test:      test,
		Workers:   workers,
		Status:    result.Status.String(),
		Duration:  duration,
		Decisions: result.Stats.Decisions,
		Conflicts: result.Stats.Conflicts,
		Removals:  result.Stats.Removals,
	}
}

func parseWorkers(list string) ([]int, error) {
	counts := make([]int, 0)
	for _, part := range strings.Split(list, ",") {
		count, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		if count < 1 {
			return nil, fmt.Errorf("worker count must be at least 1: %d", count)
		}
		counts = append(counts, count)
	}
	return counts, nil
}

func toCsv(results []BenchmarkResult) {
	file, err := os.Create(*outFile)
	if err != nil {
		log.Panicf("cannot create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"Instance", "Students", "Exams", "Slots", "Rooms", "Registrations", "Workers", "Status", "Decisions", "Conflicts", "Removals", "Duration(ms)"}
	if err := writer.Write(header); err != nil {
		log.Panicf("cannot write CSV header: %v", err)
	}

	for _, result := range results {
		record := []string{
			result.Test.Name,
			fmt.Sprintf("%d", result.Test.Students),
			fmt.Sprintf("%d", result.Test.Exams),
			fmt.Sprintf("%d", result.Test.Slots),
			fmt.Sprintf("%d", result.Test.Rooms),
			fmt.Sprintf("%d", result.Test.Registrations),
			fmt.Sprintf("%d", result.Workers),
			result.Status,
			fmt.Sprintf("%d", result.Decisions),
			fmt.Sprintf("%d", result.Conflicts),
			fmt.Sprintf("%d", result.Removals),
			fmt.Sprintf("%d", result.Duration),
		}
		if err := writer.Write(record); err != nil {
			log.Panicf("cannot write CSV record: %v", err)
		}
	}
}
