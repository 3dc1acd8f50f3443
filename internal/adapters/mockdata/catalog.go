package mockdata

import "github.com/zatekoja/rxpricediscovery/backend/internal/domain/entities"

type drugClass string

const (
	classAntibiotic       drugClass = "antibiotic"
	classAntihypertensive drugClass = "antihypertensive"
	classStatin           drugClass = "statin"
	classAntidiabetic     drugClass = "antidiabetic"
	classSSRI             drugClass = "ssri"
	classProtonPump       drugClass = "proton_pump_inhibitor"
	classThyroidHormone   drugClass = "thyroid_hormone"
)

type drugRecord struct {
	name      string
	brand     string
	gsn       int
	ndc       string
	class     drugClass
	basePrice float64
	details   entities.DrugDetails
}

type pharmacyRecord struct {
	pharmacy entities.Pharmacy
	// offsets from the requested location, in degrees
	dLat, dLon float64
}

var catalog = []drugRecord{
	{
		name: "amoxicillin", brand: "Amoxil", gsn: 8970, ndc: "00093-4155-73",
		class: classAntibiotic, basePrice: 8.5,
		details: entities.DrugDetails{
			BrandName:   "Amoxil",
			GenericName: "amoxicillin",
			Description: "A penicillin-class antibiotic used to treat bacterial infections of the ear, nose, throat, skin and urinary tract.",
			SideEffects: []string{"nausea", "diarrhea", "rash", "vomiting"},
			Dosage:      "250-500 mg every 8 hours or 500-875 mg every 12 hours",
			Storage:     "Store capsules at room temperature. Refrigerate the liquid suspension and discard after 14 days.",
			Contraindications: []string{
				"history of allergic reaction to penicillins",
				"history of allergic reaction to cephalosporins",
			},
			AdministrationInfo: "Take with or without food. Finish the full course even if symptoms improve.",
			Interactions:       []string{"methotrexate", "warfarin", "allopurinol"},
			Monitoring:         "Watch for signs of allergic reaction or severe diarrhea.",
		},
	},
	{
		name: "lisinopril", brand: "Zestril", gsn: 373, ndc: "68180-0514-01",
		class: classAntihypertensive, basePrice: 6.75,
		details: entities.DrugDetails{
			BrandName:         "Zestril",
			GenericName:       "lisinopril",
			Description:       "An ACE inhibitor used to treat high blood pressure and heart failure and to improve survival after a heart attack.",
			SideEffects:       []string{"dry cough", "dizziness", "headache", "fatigue"},
			Dosage:            "10-40 mg once daily",
			Storage:           "Store at room temperature away from moisture.",
			Contraindications: []string{"history of angioedema", "pregnancy", "use with aliskiren in diabetic patients"},
			Interactions:      []string{"potassium supplements", "NSAIDs", "lithium"},
			Monitoring:        "Check blood pressure, kidney function and potassium regularly.",
		},
	},
	{
		name: "atorvastatin", brand: "Lipitor", gsn: 29967, ndc: "00378-2015-77",
		class: classStatin, basePrice: 11.2,
		details: entities.DrugDetails{
			BrandName:         "Lipitor",
			GenericName:       "atorvastatin",
			Description:       "A statin that lowers LDL cholesterol and triglycerides and reduces the risk of heart attack and stroke.",
			SideEffects:       []string{"muscle pain", "joint pain", "diarrhea", "nasal congestion"},
			Dosage:            "10-80 mg once daily",
			Storage:           "Store at room temperature.",
			Contraindications: []string{"active liver disease", "pregnancy", "breastfeeding"},
			Interactions:      []string{"clarithromycin", "cyclosporine", "grapefruit juice"},
			Monitoring:        "Check lipid panel and liver enzymes. Report unexplained muscle pain.",
		},
	},
	{
		name: "metformin", brand: "Glucophage", gsn: 10857, ndc: "00093-1048-01",
		class: classAntidiabetic, basePrice: 5.4,
		details: entities.DrugDetails{
			BrandName:          "Glucophage",
			GenericName:        "metformin",
			Description:        "A biguanide that lowers blood sugar in adults and children with type 2 diabetes.",
			SideEffects:        []string{"nausea", "diarrhea", "stomach upset", "metallic taste"},
			Dosage:             "500-1000 mg twice daily with meals",
			Storage:            "Store at room temperature.",
			Contraindications:  []string{"severe kidney disease", "metabolic acidosis"},
			AdministrationInfo: "Take with meals to reduce stomach upset.",
			Monitoring:         "Check blood glucose, HbA1c and kidney function.",
		},
	},
	{
		name: "sertraline", brand: "Zoloft", gsn: 16374, ndc: "16729-0035-01",
		class: classSSRI, basePrice: 9.8,
		details: entities.DrugDetails{
			BrandName:         "Zoloft",
			GenericName:       "sertraline",
			Description:       "A selective serotonin reuptake inhibitor used to treat depression, anxiety, panic and obsessive-compulsive disorders.",
			SideEffects:       []string{"nausea", "insomnia", "dizziness", "dry mouth"},
			Dosage:            "50-200 mg once daily",
			Storage:           "Store at room temperature.",
			Contraindications: []string{"use of an MAO inhibitor within 14 days", "use with pimozide"},
			Interactions:      []string{"MAO inhibitors", "triptans", "NSAIDs"},
			Monitoring:        "Watch for worsening mood or suicidal thoughts, especially early in treatment.",
		},
	},
	{
		name: "omeprazole", brand: "Prilosec", gsn: 21407, ndc: "62175-0136-37",
		class: classProtonPump, basePrice: 7.6,
		details: entities.DrugDetails{
			BrandName:          "Prilosec",
			GenericName:        "omeprazole",
			Description:        "A proton pump inhibitor that reduces stomach acid to treat heartburn, ulcers and GERD.",
			SideEffects:        []string{"headache", "abdominal pain", "nausea", "gas"},
			Dosage:             "20-40 mg once daily before a meal",
			Storage:            "Store at room temperature in the original container.",
			Contraindications:  []string{"use with rilpivirine"},
			AdministrationInfo: "Swallow capsules whole 30 to 60 minutes before eating.",
		},
	},
	{
		name: "amlodipine", brand: "Norvasc", gsn: 2655, ndc: "69097-0127-05",
		class: classAntihypertensive, basePrice: 6.1,
		details: entities.DrugDetails{
			BrandName:         "Norvasc",
			GenericName:       "amlodipine",
			Description:       "A calcium channel blocker used to treat high blood pressure and chest pain.",
			SideEffects:       []string{"swelling of ankles or feet", "flushing", "dizziness", "fatigue"},
			Dosage:            "5-10 mg once daily",
			Storage:           "Store at room temperature.",
			Contraindications: []string{"severe aortic stenosis"},
			Monitoring:        "Check blood pressure and heart rate.",
		},
	},
	{
		name: "levothyroxine", brand: "Synthroid", gsn: 6627, ndc: "00378-1805-77",
		class: classThyroidHormone, basePrice: 10.3,
		details: entities.DrugDetails{
			BrandName:          "Synthroid",
			GenericName:        "levothyroxine",
			Description:        "A thyroid hormone used to treat hypothyroidism.",
			SideEffects:        []string{"weight loss", "tremor", "headache", "insomnia"},
			Dosage:             "Individualized, usually 25-200 mcg once daily",
			Storage:            "Store at room temperature away from light and moisture.",
			Contraindications:  []string{"untreated adrenal insufficiency", "recent heart attack"},
			AdministrationInfo: "Take on an empty stomach 30 to 60 minutes before breakfast.",
			Monitoring:         "Check TSH levels 6 to 8 weeks after a dose change.",
		},
	},
	// Therapeutic alternatives only.
	{
		name: "losartan", brand: "Cozaar", gsn: 20374, ndc: "00093-7364-98",
		class: classAntihypertensive, basePrice: 7.9,
		details: entities.DrugDetails{
			BrandName:         "Cozaar",
			GenericName:       "losartan",
			Description:       "An angiotensin II receptor blocker used to treat high blood pressure.",
			SideEffects:       []string{"dizziness", "back pain", "nasal congestion"},
			Dosage:            "25-100 mg once daily",
			Storage:           "Store at room temperature.",
			Contraindications: []string{"pregnancy"},
		},
	},
	{
		name: "simvastatin", brand: "Zocor", gsn: 16579, ndc: "16714-0683-01",
		class: classStatin, basePrice: 6.9,
		details: entities.DrugDetails{
			BrandName:         "Zocor",
			GenericName:       "simvastatin",
			Description:       "A statin that lowers cholesterol and reduces cardiovascular risk.",
			SideEffects:       []string{"muscle pain", "constipation", "headache"},
			Dosage:            "10-40 mg once daily in the evening",
			Storage:           "Store at room temperature.",
			Contraindications: []string{"active liver disease", "pregnancy"},
		},
	},
	{
		name: "escitalopram", brand: "Lexapro", gsn: 49963, ndc: "00093-5851-01",
		class: classSSRI, basePrice: 9.1,
		details: entities.DrugDetails{
			BrandName:         "Lexapro",
			GenericName:       "escitalopram",
			Description:       "A selective serotonin reuptake inhibitor used to treat depression and generalized anxiety disorder.",
			SideEffects:       []string{"nausea", "insomnia", "fatigue"},
			Dosage:            "10-20 mg once daily",
			Storage:           "Store at room temperature.",
			Contraindications: []string{"use of an MAO inhibitor within 14 days"},
		},
	},
	{
		name: "pantoprazole", brand: "Protonix", gsn: 40224, ndc: "62175-0617-37",
		class: classProtonPump, basePrice: 8.2,
		details: entities.DrugDetails{
			BrandName:         "Protonix",
			GenericName:       "pantoprazole",
			Description:       "A proton pump inhibitor used to treat erosive esophagitis and GERD.",
			SideEffects:       []string{"headache", "diarrhea", "nausea"},
			Dosage:            "40 mg once daily",
			Storage:           "Store at room temperature.",
			Contraindications: []string{"use with rilpivirine"},
		},
	},
	{
		name: "cephalexin", brand: "Keflex", gsn: 9091, ndc: "67877-0219-01",
		class: classAntibiotic, basePrice: 9.4,
		details: entities.DrugDetails{
			BrandName:         "Keflex",
			GenericName:       "cephalexin",
			Description:       "A cephalosporin antibiotic used to treat infections of the skin, bone and urinary tract.",
			SideEffects:       []string{"diarrhea", "nausea", "stomach pain"},
			Dosage:            "250-500 mg every 6 hours",
			Storage:           "Store capsules at room temperature.",
			Contraindications: []string{"allergy to cephalosporins"},
		},
	},
}

var pharmacies = []pharmacyRecord{
	{
		pharmacy: entities.Pharmacy{
			Name: "CVS Pharmacy", Address: "9500 N Capital of Texas Hwy", City: "Austin", State: "TX",
			ZipCode: "78759", Phone: "512-555-0142", ChainCode: "CVS", NPI: "1093817465",
		},
		dLat: 0.004, dLon: 0.006,
	},
	{
		pharmacy: entities.Pharmacy{
			Name: "Walgreens", Address: "3636 Far West Blvd", City: "Austin", State: "TX",
			ZipCode: "78731", Phone: "512-555-0178", ChainCode: "WAG", NPI: "1356284710",
		},
		dLat: -0.012, dLon: -0.009,
	},
	{
		pharmacy: entities.Pharmacy{
			Name: "H-E-B Pharmacy", Address: "6900 Brodie Ln", City: "Austin", State: "TX",
			ZipCode: "78745", Phone: "512-555-0133", ChainCode: "HEB", NPI: "1457392018",
		},
		dLat: 0.021, dLon: 0.015,
	},
	{
		pharmacy: entities.Pharmacy{
			Name: "Walmart Pharmacy", Address: "12900 N Interstate 35", City: "Austin", State: "TX",
			ZipCode: "78753", Phone: "512-555-0119", ChainCode: "WMT", NPI: "1538162947",
		},
		dLat: -0.030, dLon: 0.027,
	},
	{
		pharmacy: entities.Pharmacy{
			Name: "Walker Rx Pharmacy", Address: "4515 Seton Center Pkwy", City: "Austin", State: "TX",
			ZipCode: "78759", Phone: "512-555-0161", ChainCode: "WRX", NPI: "1619273850",
		},
		dLat: 0.002, dLon: -0.003,
	},
	{
		pharmacy: entities.Pharmacy{
			Name: "Kroger Pharmacy", Address: "2525 W Anderson Ln", City: "Austin", State: "TX",
			ZipCode: "78757", Phone: "512-555-0187", ChainCode: "KRO", NPI: "1720384961",
		},
		dLat: 0.045, dLon: -0.038,
	},
	{
		pharmacy: entities.Pharmacy{
			Name: "Costco Pharmacy", Address: "10401 Research Blvd", City: "Austin", State: "TX",
			ZipCode: "78759", Phone: "512-555-0104", ChainCode: "COS", NPI: "1831495072",
		},
		dLat: -0.052, dLon: 0.041,
	},
	{
		pharmacy: entities.Pharmacy{
			Name: "Randalls Pharmacy", Address: "2025 W Ben White Blvd", City: "Austin", State: "TX",
			ZipCode: "78704", Phone: "512-555-0156", ChainCode: "RAN", NPI: "1942506183",
		},
		dLat: 0.063, dLon: 0.058,
	},
}
