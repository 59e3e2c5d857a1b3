package fennecs

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// chunkBounds splits [0, total) into consecutive, disjoint ranges of at
// most chunkSize rows each. Disjoint row ranges are what make Job safe: two
// goroutines never touch the same element of the same Storage, so no
// synchronization is needed inside the per-chunk callback (spec §5's
// parallel-iteration guarantee).
func chunkBounds(total, chunkSize int) [][2]int {
	if total <= 0 {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = total
	}
	bounds := make([][2]int, 0, (total+chunkSize-1)/chunkSize)
	for start := 0; start < total; start += chunkSize {
		end := start + chunkSize
		if end > total {
			end = total
		}
		bounds = append(bounds, [2]int{start, end})
	}
	return bounds
}

func jobConcurrency() int {
	if Config.JobConcurrency > 0 {
		return Config.JobConcurrency
	}
	return runtime.GOMAXPROCS(0)
}

// Job1 runs fn over every matching row as ForEach1 does, except each
// archetype's rows are partitioned into chunks of roughly total/concurrency
// and each chunk runs on its own goroutine; Job1 returns once all are done.
func Job1[A any](s *Stream1[A], fn func(a *A)) error {
	guard := s.q.world.lock.beginRead()
	defer guard.End()

	concurrency := jobConcurrency()
	var g errgroup.Group
	for _, a := range s.q.archetypesForLocked() {
		for _, combo := range crossJoinColumns(a, []Match{s.m}) {
			col := combo[0]
			total := a.Count()
			span := col.Span()
			chunkSize := max(1, total/concurrency)
			for _, b := range chunkBounds(total, chunkSize) {
				start, end := b[0], b[1]
				g.Go(func() error {
					for row := start; row < end; row++ {
						v := span.Index(row).Addr().Interface().(*A)
						fn(v)
					}
					return nil
				})
			}
		}
	}
	return g.Wait()
}

// JobUniform1 is Job1 plus a fixed extra value passed to fn.
func JobUniform1[A, U any](s *Stream1[A], u U, fn func(a *A, u U)) error {
	return Job1(s, func(a *A) { fn(a, u) })
}

// Job2 is the two-component counterpart to Job1.
func Job2[A, B any](s *Stream2[A, B], fn func(a *A, b *B)) error {
	guard := s.q.world.lock.beginRead()
	defer guard.End()

	concurrency := jobConcurrency()
	var g errgroup.Group
	for _, a := range s.q.archetypesForLocked() {
		for _, combo := range crossJoinColumns(a, []Match{s.ma, s.mb}) {
			colA, colB := combo[0], combo[1]
			total := a.Count()
			spanA, spanB := colA.Span(), colB.Span()
			chunkSize := max(1, total/concurrency)
			for _, b := range chunkBounds(total, chunkSize) {
				start, end := b[0], b[1]
				g.Go(func() error {
					for row := start; row < end; row++ {
						va := spanA.Index(row).Addr().Interface().(*A)
						vb := spanB.Index(row).Addr().Interface().(*B)
						fn(va, vb)
					}
					return nil
				})
			}
		}
	}
	return g.Wait()
}

// JobUniform2 is Job2 plus a fixed extra value passed to fn.
func JobUniform2[A, B, U any](s *Stream2[A, B], u U, fn func(a *A, b *B, u U)) error {
	return Job2(s, func(a *A, b *B) { fn(a, b, u) })
}
