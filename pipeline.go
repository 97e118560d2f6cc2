package rotateto

import "sync"

// task calls fn for every element of data, split in contiguous chunks over workersCount goroutines.
// fn receives the index of the element, so results can be written to a slot without locking.
func task[T any](workersCount int, data []T, fn func(i int, data T)) {
	dataSize := len(data)
	if dataSize == 0 {
		return
	}
	// a single chunk is not worth a goroutine
	if workersCount <= 1 || dataSize == 1 {
		for i := range data {
			fn(i, data[i])
		}
		return
	}

	var wg sync.WaitGroup
	workersCount = min(workersCount, dataSize)
	chunkSize := (dataSize + workersCount - 1) / workersCount

	for workerID := 0; workerID < workersCount; workerID++ {
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				fn(i, data[i])
			}
		}(workerID*chunkSize, min((workerID+1)*chunkSize, dataSize))
	}
	wg.Wait()
}
