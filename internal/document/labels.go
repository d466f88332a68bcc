package document

import "github.com/qcbd/app-beneficiary/internal/models"

var genderLabels = map[models.Gender]string{
	models.GenderMale:   "পুরুষ",
	models.GenderFemale: "মহিলা",
	models.GenderOther:  "অন্যান্য",
}

var physicalConditionLabels = map[models.PhysicalCondition]string{
	models.PhysicalConditionHealthy:  "সুস্থ",
	models.PhysicalConditionSick:     "অসুস্থ",
	models.PhysicalConditionDisabled: "প্রতিবন্ধী",
}

var residenceStatusLabels = map[models.ResidenceStatus]string{
	models.ResidenceOwn:       "নিজস্ব",
	models.ResidenceRented:    "ভাড়া",
	models.ResidenceSheltered: "আশ্রিত",
	models.ResidenceHomeless:  "গৃহহীন",
}

var houseTypeLabels = map[models.HouseType]string{
	models.HousePaka:     "পাকা",
	models.HouseSemiPaka: "আধা-পাকা",
	models.HouseKacha:    "কাঁচা",
	models.HouseThatched: "ছনের ঘর",
}

var maritalStatusLabels = map[models.MaritalStatus]string{
	models.MaritalMarried:   "বিবাহিত",
	models.MaritalUnmarried: "অবিবাহিত",
	models.MaritalWidowed:   "বিধবা",
	models.MaritalDivorced:  "তালাকপ্রাপ্ত",
}

var statusLabels = map[models.ApplicationStatus]string{
	models.StatusNew:        "নতুন",
	models.StatusIncomplete: "অসম্পূর্ণ",
	models.StatusComplete:   "সম্পূর্ণ",
	models.StatusPending:    "অপেক্ষমান",
	models.StatusAccepted:   "গৃহীত",
	models.StatusRejected:   "প্রত্যাখ্যাত",
	models.StatusGranted:    "মঞ্জুর",
}

func yesNo(v *bool) string {
	switch {
	case v == nil:
		return ""
	case *v:
		return "হ্যাঁ"
	default:
		return "না"
	}
}
