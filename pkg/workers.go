package phconvert

import (
	"fmt"
	"sync"
)

// ConvertJob is one pt3 -> Photon-HDF5 conversion request.
type ConvertJob struct {
	FileIn  string
	FileOut string
}

// ConvertResult reports the outcome of a conversion job.
type ConvertResult struct {
	Job     ConvertJob
	Photons int
	Dropped int
	Error   error
}

// ConvertFile runs the full pipeline on one file: decode the pt3, filter
// overflow records unless KeepOverflow is set, assemble the record and save
// it as Photon-HDF5.
func ConvertFile(fileIn, fileOut string) (ConvertResult, error) {
	result := ConvertResult{Job: ConvertJob{FileIn: fileIn, FileOut: fileOut}}

	pt3, err := ReadPT3(fileIn)
	if err != nil {
		result.Error = err
		return result, err
	}
	if !configuration.KeepOverflow {
		result.Dropped = pt3.Photons.RemoveOverflow()
	}
	result.Photons = pt3.Photons.Len()

	record := BuildRecord(pt3, configuration)
	if err := SavePhotonHDF5(fileOut, record); err != nil {
		result.Error = err
		return result, err
	}
	if configuration.Verbosity > 0 {
		logger.Info(fmt.Sprintf("converted %s -> %s (%d photons, %d dropped)",
			fileIn, fileOut, result.Photons, result.Dropped), "convert")
	}
	return result, nil
}

func convertWorker(id int, jobs <-chan ConvertJob, results chan<- ConvertResult) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(fmt.Sprintf("worker %d recovered from panic: %v", id, r))
			results <- ConvertResult{Error: fmt.Errorf("worker panic: %v", r)}
		}
	}()

	for job := range jobs {
		result, _ := ConvertFile(job.FileIn, job.FileOut)
		results <- result
	}
}

// ConvertAll runs the jobs on configuration.NumWorkers workers and returns
// one result per job, in completion order. A failed job does not stop the
// others.
func ConvertAll(jobs []ConvertJob) []ConvertResult {
	workers := configuration.NumWorkers
	if workers < 1 {
		workers = 1
	}

	jobChan := make(chan ConvertJob, len(jobs))
	resultChan := make(chan ConvertResult, len(jobs))

	var wg sync.WaitGroup
	for id := 0; id < workers; id++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			convertWorker(id, jobChan, resultChan)
		}(id)
	}

	for _, job := range jobs {
		jobChan <- job
	}
	close(jobChan)

	wg.Wait()
	close(resultChan)

	results := make([]ConvertResult, 0, len(jobs))
	for result := range resultChan {
		results = append(results, result)
	}
	return results
}
