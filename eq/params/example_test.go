package params_test

import (
	"fmt"

	"github.com/cwbudde/algo-eq/eq/params"
)

func ExampleChangeDetector() {
	store := params.NewStore()
	detector := params.NewChangeDetector(store)
	defer detector.Close()

	fmt.Println(detector.TestAndClear())
	fmt.Println(detector.TestAndClear())

	_ = store.Set(params.PeakGain, 6)
	fmt.Println(detector.TestAndClear())
	fmt.Println(params.Snapshot(store).PeakGainDB)
	// Output:
	// true
	// false
	// true
	// 6
}
