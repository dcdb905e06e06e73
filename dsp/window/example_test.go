package window

import "fmt"

func ExampleGenerate() {
	w := Generate(TypeHann, 4)
	fmt.Printf("%.2f %.2f %.2f %.2f\n", w[0], w[1], w[2], w[3])
	// Output:
	// 0.00 0.75 0.75 0.00
}

func ExampleInfo() {
	m := Info(TypeBlackmanHarris4Term)
	fmt.Printf("%s %.1f\n", m.Name, m.ENBW)
	// Output:
	// Blackman-Harris 2.0
}
