package scenario

import "fmt"

// historicalCropNeedScenario is the constant hard-coded in the
// original MSUCast scenario descriptor string
// (original_source/src/scenario.cpp). Its exact semantics are an open
// question (spec.md §9 item 2) and are reproduced here, not guessed
// at.
const historicalCropNeedScenario = 6608

// Descriptor builds the run-level scenario descriptor string written
// to the shared key-value store's emo_data[UUID] entry before
// publish (spec.md §4.4, §6).
func Descriptor(runUUID, candidateUUID string, scenarioID int) string {
	return fmt.Sprintf("%s_%s_%d_%d", runUUID, candidateUUID, scenarioID, historicalCropNeedScenario)
}
