package core

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
)

// ============================================================================
// Codec Benchmarks
// ============================================================================

// BenchmarkParse benchmarks parsing a class-sized table.
func BenchmarkParse(b *testing.B) {
	text := generateTestTable(30)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Parse(text, ';')
	}
}

// BenchmarkParse_Large benchmarks parsing a school-sized table.
func BenchmarkParse_Large(b *testing.B) {
	text := generateTestTable(5000)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Parse(text, ';')
	}
}

// BenchmarkParseReader_Upload benchmarks the full upload read path
// (size limit, BOM skipping, sanitizing, parsing).
func BenchmarkParseReader_Upload(b *testing.B) {
	data := Encode(generateTestTable(1000))

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		ParseReader(WrapUpload(bytes.NewReader(data), DefaultMaxFileSize), ';')
	}
}

// BenchmarkSerialize compares plain and quoted output.
func BenchmarkSerialize(b *testing.B) {
	grid, _ := Parse(generateTestTable(1000), ';')

	b.Run("Plain", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			Serialize(grid, DefaultTextOptions())
		}
	})

	b.Run("Quoted", func(b *testing.B) {
		opts := DefaultTextOptions()
		opts.Quote = true
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			Serialize(grid, opts)
		}
	})
}

// BenchmarkSanitizeUTF8_LargeDataset benchmarks a larger data set.
func BenchmarkSanitizeUTF8_LargeDataset(b *testing.B) {
	// ~10KB of valid UTF-8
	data := bytes.Repeat([]byte("Zoë;10A;5;4;3;2;5\n"), 500)
	buf := make([]byte, len(data))

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		copy(buf, data)
		sanitizeUTF8(buf)
	}
}

// BenchmarkStreamingSanitizer benchmarks the sanitizer with small reads.
func BenchmarkStreamingSanitizer(b *testing.B) {
	data := bytes.Repeat([]byte("Łukasz;10A;5;4;3;2;5\n"), 500)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		io.Copy(io.Discard, NewStreamingUTF8Sanitizer(bytes.NewReader(data)))
	}
}

// ============================================================================
// Aggregation Benchmarks
// ============================================================================

// BenchmarkRecords benchmarks typing grid rows into records.
func BenchmarkRecords(b *testing.B) {
	grid, _ := Parse(generateTestTable(1000), ';')

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Records(grid)
	}
}

// BenchmarkRun benchmarks both statistics views at different table sizes.
func BenchmarkRun(b *testing.B) {
	for _, rows := range []int{30, 1000, 10000} {
		grid, _ := Parse(generateTestTable(rows), ';')
		records, _ := Records(grid)

		b.Run(fmt.Sprintf("rows=%d", rows), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				Run(records)
			}
		})
	}
}

// BenchmarkMedian benchmarks the median of one large group.
func BenchmarkMedian(b *testing.B) {
	values := make([]Grade, 10000)
	for i := range values {
		values[i] = Grade(2 + i%4)
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Median(values)
	}
}

// BenchmarkWriteWorkbook benchmarks the xlsx statistics report.
func BenchmarkWriteWorkbook(b *testing.B) {
	grid, _ := Parse(generateTestTable(300), ';')
	records, _ := Records(grid)
	result := Run(records)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		WriteWorkbook(io.Discard, result)
	}
}

// ============================================================================
// Parallel Benchmarks
// ============================================================================

// BenchmarkServiceStatisticsParallel benchmarks concurrent statistics reads.
func BenchmarkServiceStatisticsParallel(b *testing.B) {
	svc := NewService(DefaultServiceConfig())
	if _, err := svc.ImportText(context.Background(), generateTestTable(500), "bench.txt"); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			svc.Statistics(context.Background())
		}
	})
}

// ============================================================================
// Helper Functions
// ============================================================================

// generateTestTable generates a gradebook with the specified number of rows
// spread over ten classes.
func generateTestTable(rows int) string {
	var b strings.Builder
	b.WriteString(strings.Join(DefaultHeader(), ";"))
	b.WriteString("\n")

	for i := 0; i < rows; i++ {
		fmt.Fprintf(&b, "Student %d;%dA", i, 5+i%10)
		for s := 0; s < NumSubjects; s++ {
			fmt.Fprintf(&b, ";%d", 2+(i+s)%4)
		}
		b.WriteString("\n")
	}

	return b.String()
}
