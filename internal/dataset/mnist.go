package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// MNIST dimensions.
const (
	MNISTRows    = 28
	MNISTCols    = 28
	MNISTClasses = 10
)

// mnistFiles lists accepted file names per split, in lookup order. The
// canonical names are tried with and without a .gz suffix, followed by the
// short names the download script stores.
var mnistFiles = map[bool][2][]string{
	true: {
		{"train-images-idx3-ubyte", "train-images-idx3-ubyte.gz", "train-images.idx3-ubyte", "train_data.gz"},
		{"train-labels-idx1-ubyte", "train-labels-idx1-ubyte.gz", "train-labels.idx1-ubyte", "train_labels.gz"},
	},
	false: {
		{"t10k-images-idx3-ubyte", "t10k-images-idx3-ubyte.gz", "t10k-images.idx3-ubyte", "test_data.gz"},
		{"t10k-labels-idx1-ubyte", "t10k-labels-idx1-ubyte.gz", "t10k-labels.idx1-ubyte", "test_labels.gz"},
	},
}

// LoadMNIST loads the training (train = true) or test split of MNIST from
// dataDir.
//
// Images are returned as N × 1 × 28 × 28 raw pixel values. At most
// maxSamples samples are decoded (0 = all). When no candidate file exists
// the returned error satisfies errors.Is(err, fs.ErrNotExist).
func LoadMNIST(dataDir string, train bool, maxSamples int) (*Images, []int, error) {
	names := mnistFiles[train]

	imagePath, err := findFile(dataDir, names[0])
	if err != nil {
		return nil, nil, err
	}
	labelPath, err := findFile(dataDir, names[1])
	if err != nil {
		return nil, nil, err
	}

	images, err := ReadIDXImages(imagePath, maxSamples)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load images: %w", err)
	}
	labels, err := ReadIDXLabels(labelPath, maxSamples)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load labels: %w", err)
	}

	if images.Len() != len(labels) {
		return nil, nil, fmt.Errorf("%w: %d images, %d labels", ErrLabelCount, images.Len(), len(labels))
	}
	return images, labels, nil
}

func findFile(dir string, candidates []string) (string, error) {
	for _, name := range candidates {
		path := filepath.Join(dir, name)
		_, err := os.Stat(path)
		if err == nil {
			return path, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("failed to stat %s: %w", path, err)
		}
	}
	return "", fmt.Errorf("none of %v found in %s: %w", candidates, dir, fs.ErrNotExist)
}
