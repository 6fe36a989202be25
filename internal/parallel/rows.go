package parallel

// ProcessRows splits rows [0, totalRows) into contiguous, non-overlapping
// ranges, one per worker at most, and runs work on each range in parallel.
//
// init builds the per-range handle on the calling goroutine, in row order,
// before any work starts. ProcessRows returns once every range is done.
func ProcessRows[H any](p *WorkerPool, totalRows int, init func(start, count int) H, work func(H)) {
	if totalRows <= 0 {
		return
	}

	ranges := min(p.Workers(), totalRows)
	perRange := totalRows / ranges
	extra := totalRows % ranges

	items := make([]func(), 0, ranges)
	start := 0
	for i := range ranges {
		count := perRange
		if i < extra {
			count++
		}
		h := init(start, count)
		items = append(items, func() { work(h) })
		start += count
	}

	p.ExecuteAll(items)
}

// ProcessScanlines runs fn once for every line in [0, lines) across the
// pool and returns when all lines are done.
func ProcessScanlines(p *WorkerPool, lines int, fn func(line int)) {
	if lines <= 0 {
		return
	}
	items := make([]func(), lines)
	for y := range lines {
		items[y] = func() { fn(y) }
	}
	p.ExecuteAll(items)
}
