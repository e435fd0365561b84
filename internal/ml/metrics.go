package ml

import (
	"math"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"

	"github.com/betbot/analytics-api/internal/models"
)

// Evaluate scores home-win probabilities against observed outcomes. A game
// is predicted as a home win when its probability is above 0.5.
func Evaluate(homeWon []bool, pHome []float64) models.ModelMetrics {
	var m models.ModelMetrics
	n := len(homeWon)
	if n == 0 || n != len(pHome) {
		return m
	}

	var tp, fp, tn, fn float64
	for i, actual := range homeWon {
		predicted := pHome[i] > 0.5
		switch {
		case predicted && actual:
			tp++
		case predicted && !actual:
			fp++
		case !predicted && !actual:
			tn++
		default:
			fn++
		}
	}

	m.Accuracy = (tp + tn) / float64(n)
	if tp+fp > 0 {
		m.Precision = tp / (tp + fp)
	}
	if tp+fn > 0 {
		m.Recall = tp / (tp + fn)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	m.ROCAUC = rocAUC(homeWon, pHome)
	return m
}

// rocAUC is the area under the ROC curve; 0.5 when only one class is present
func rocAUC(labels []bool, scores []float64) float64 {
	positives := 0
	for _, l := range labels {
		if l {
			positives++
		}
	}
	if positives == 0 || positives == len(labels) {
		return 0.5
	}

	y := append([]float64(nil), scores...)
	classes := append([]bool(nil), labels...)
	stat.SortWeightedLabeled(y, classes, nil)

	tpr, fpr, _ := stat.ROC(nil, y, classes, nil)
	auc := integrate.Trapezoidal(fpr, tpr)
	if math.IsNaN(auc) {
		return 0.5
	}
	return auc
}
