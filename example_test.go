package plantimg_test

import (
	"fmt"

	"github.com/maocatooo/plantimg"
)

func ExampleRenderer_Render() {
	r := plantimg.New(plantimg.HexEncoder)

	img, err := r.Render(plantimg.NewRequest(
		[]string{"A", "->", "B\n"},
		plantimg.WithServer("https://example.org/uml"),
		plantimg.WithFormat(plantimg.FormatPNG),
		plantimg.WithClassName("diagram"),
	))
	if err != nil {
		panic(err)
	}
	h, err := img.HTML()
	if err != nil {
		panic(err)
	}
	fmt.Println(img.Src)
	fmt.Println(h)
	// Output:
	// https://example.org/uml/png/~h412d3e42
	// <img src="https://example.org/uml/png/~h412d3e42" alt="PlantUML diagram" class="diagram">
}
