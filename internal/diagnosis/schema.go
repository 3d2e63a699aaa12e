package diagnosis

import "fmt"

// Disease identifies one of the supported classifiers.
type Disease string

const (
	Diabetes     Disease = "diabetes"
	Heart        Disease = "heart"
	Parkinsons   Disease = "parkinsons"
	BreastCancer Disease = "breast-cancer"
)

// Field is one model input. Key is the training column name; Label is what the form shows.
type Field struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Schema pins the feature order a model was trained on. Field order is the vector order;
// changing it requires retraining the artifact and bumping Version.
type Schema struct {
	Disease   Disease `json:"disease"`
	Version   int     `json:"version"`
	Title     string  `json:"title"`
	MenuLabel string  `json:"menuLabel"`
	Icon      string  `json:"icon"`
	Button    string  `json:"button"`
	ModelFile string  `json:"modelFile"`
	Columns   int     `json:"columns"`
	Fields    []Field `json:"fields"`
	Positive  string  `json:"positive"`
	Negative  string  `json:"negative"`
}

// Width is the feature vector length the model expects.
func (s Schema) Width() int {
	return len(s.Fields)
}

var schemas = []Schema{
	{
		Disease:   Diabetes,
		Version:   1,
		Title:     "Diabetes Prediction using ML",
		MenuLabel: "Diabetes Prediction",
		Icon:      "activity",
		Button:    "Diabetes Test Result",
		ModelFile: "diabetes_model.onnx",
		Columns:   3,
		Fields: []Field{
			{Key: "Pregnancies", Label: "Number of Pregnancies"},
			{Key: "Glucose", Label: "Glucose Level"},
			{Key: "BloodPressure", Label: "Blood Pressure value"},
			{Key: "SkinThickness", Label: "Skin Thickness value"},
			{Key: "Insulin", Label: "Insulin Level"},
			{Key: "BMI", Label: "BMI value"},
			{Key: "DiabetesPedigreeFunction", Label: "Diabetes Pedigree Function value"},
			{Key: "Age", Label: "Age of the Person"},
		},
		Positive: "The person is diabetic",
		Negative: "The person is not diabetic",
	},
	{
		Disease:   Heart,
		Version:   1,
		Title:     "Heart Disease Prediction using ML",
		MenuLabel: "Heart Disease Prediction",
		Icon:      "heart",
		Button:    "Heart Disease Test Result",
		ModelFile: "heart_disease_model.onnx",
		Columns:   3,
		Fields: []Field{
			{Key: "age", Label: "Age"},
			{Key: "sex", Label: "Sex"},
			{Key: "cp", Label: "Chest Pain types"},
			{Key: "trestbps", Label: "Resting Blood Pressure"},
			{Key: "chol", Label: "Serum Cholestoral in mg/dl"},
			{Key: "fbs", Label: "Fasting Blood Sugar > 120 mg/dl"},
			{Key: "restecg", Label: "Resting Electrocardiographic results"},
			{Key: "thalach", Label: "Maximum Heart Rate achieved"},
			{Key: "exang", Label: "Exercise Induced Angina"},
			{Key: "oldpeak", Label: "ST depression induced by exercise"},
			{Key: "slope", Label: "Slope of the peak exercise ST segment"},
			{Key: "ca", Label: "Major vessels colored by flourosopy"},
			{Key: "thal", Label: "thal: 0 = normal; 1 = fixed defect; 2 = reversable defect"},
		},
		Positive: "The person is having heart disease",
		Negative: "The person does not have any heart disease",
	},
	{
		Disease:   Parkinsons,
		Version:   1,
		Title:     "Parkinson's Disease Prediction using ML",
		MenuLabel: "Parkinsons Prediction",
		Icon:      "person",
		Button:    "Parkinson's Test Result",
		ModelFile: "parkinsons_model.onnx",
		Columns:   5,
		Fields: []Field{
			{Key: "MDVP:Fo(Hz)", Label: "MDVP:Fo(Hz)"},
			{Key: "MDVP:Fhi(Hz)", Label: "MDVP:Fhi(Hz)"},
			{Key: "MDVP:Flo(Hz)", Label: "MDVP:Flo(Hz)"},
			{Key: "MDVP:Jitter(%)", Label: "MDVP:Jitter(%)"},
			{Key: "MDVP:Jitter(Abs)", Label: "MDVP:Jitter(Abs)"},
			{Key: "MDVP:RAP", Label: "MDVP:RAP"},
			{Key: "MDVP:PPQ", Label: "MDVP:PPQ"},
			{Key: "Jitter:DDP", Label: "Jitter:DDP"},
			{Key: "MDVP:Shimmer", Label: "MDVP:Shimmer"},
			{Key: "MDVP:Shimmer(dB)", Label: "MDVP:Shimmer(dB)"},
			{Key: "Shimmer:APQ3", Label: "Shimmer:APQ3"},
			{Key: "Shimmer:APQ5", Label: "Shimmer:APQ5"},
			{Key: "MDVP:APQ", Label: "MDVP:APQ"},
			{Key: "Shimmer:DDA", Label: "Shimmer:DDA"},
			{Key: "NHR", Label: "NHR"},
			{Key: "HNR", Label: "HNR"},
			{Key: "RPDE", Label: "RPDE"},
			{Key: "DFA", Label: "DFA"},
			{Key: "spread1", Label: "spread1"},
			{Key: "spread2", Label: "spread2"},
			{Key: "D2", Label: "D2"},
			{Key: "PPE", Label: "PPE"},
		},
		Positive: "The person has Parkinson's disease",
		Negative: "The person does not have Parkinson's disease",
	},
	{
		Disease:   BreastCancer,
		Version:   1,
		Title:     "Breast Cancer Prediction using ML",
		MenuLabel: "Breast Cancer Prediction",
		Icon:      "heartbeat",
		Button:    "Breast Cancer Test Result",
		ModelFile: "breast_cancer_model.onnx",
		Columns:   3,
		Fields: []Field{
			{Key: "mean radius", Label: "Mean Radius"},
			{Key: "mean texture", Label: "Mean Texture"},
			{Key: "mean perimeter", Label: "Mean Perimeter"},
			{Key: "mean area", Label: "Mean Area"},
			{Key: "mean smoothness", Label: "Mean Smoothness"},
			{Key: "mean compactness", Label: "Mean Compactness"},
			{Key: "mean concavity", Label: "Mean Concavity"},
			{Key: "mean concave points", Label: "Mean Concave Points"},
			{Key: "mean symmetry", Label: "Mean Symmetry"},
			{Key: "mean fractal dimension", Label: "Mean Fractal Dimension"},
		},
		Positive: "The person has breast cancer",
		Negative: "The person does not have breast cancer",
	},
}

// Schemas returns the supported schemas in menu order.
func Schemas() []Schema {
	out := make([]Schema, len(schemas))
	copy(out, schemas)
	return out
}

// Lookup finds the schema for a disease.
func Lookup(d Disease) (Schema, error) {
	for _, s := range schemas {
		if s.Disease == d {
			return s, nil
		}
	}
	return Schema{}, fmt.Errorf("%w: %s", ErrUnknownDisease, d)
}
