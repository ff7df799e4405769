package service

// 模板商品归一化
// 上游对“无变体商品”的表示有两种历史形态：
//   a) 挂一个 model_id=0 的合成变体，价格在变体上
//   b) 变体列表为空，价格直接在商品上
// 写接口只接受其中一种规范形态，这里统一转换并剔除无效条目。
// 分支顺序不能调整，语义依赖逐条短路。

// TemplateItem 运营模板里的一行商品
type TemplateItem struct {
	ItemID        int64
	Price         float64
	Stock         int
	PurchaseLimit int
	Models        []TemplateModel
}

// TemplateModel 模板里的变体行
type TemplateModel struct {
	ModelID int64
	Price   float64
	Stock   int
	Status  int // 1 = enabled
}

// FlashSaleItemPayload 写接口期望的商品载荷
// 无变体商品：PromotionPrice/Stock 直接在商品上，Models 为空
// 有变体商品：价格库存全部在 Models 里
type FlashSaleItemPayload struct {
	ItemID         int64                   `json:"item_id"`
	PurchaseLimit  int                     `json:"purchase_limit,omitempty"`
	PromotionPrice float64                 `json:"input_promotion_price,omitempty"`
	Stock          int                     `json:"stock,omitempty"`
	Models         []FlashSaleModelPayload `json:"models,omitempty"`
}

// FlashSaleModelPayload 变体载荷
type FlashSaleModelPayload struct {
	ModelID        int64   `json:"model_id"`
	PromotionPrice float64 `json:"input_promotion_price"`
	Stock          int     `json:"stock"`
}

// NormalizeTemplateItems 把模板商品转为写接口载荷，丢弃无效条目
// 保证：产出条目价格均 > 0，且变体数组绝不为空
func NormalizeTemplateItems(items []TemplateItem) []FlashSaleItemPayload {
	candidates := make([]FlashSaleItemPayload, 0, len(items))

	for _, item := range items {
		enabled := enabledModels(item.Models)

		switch {
		case len(enabled) == 1 && enabled[0].ModelID == 0 && enabled[0].Price > 0:
			// 合成的“无变体”变体：用变体上的价格库存出平铺条目
			candidates = append(candidates, FlashSaleItemPayload{
				ItemID:         item.ItemID,
				PurchaseLimit:  item.PurchaseLimit,
				PromotionPrice: enabled[0].Price,
				Stock:          enabled[0].Stock,
			})

		case len(enabled) == 0 && item.Price > 0:
			// 没有启用变体但商品自带价格：用商品自身字段出平铺条目
			candidates = append(candidates, FlashSaleItemPayload{
				ItemID:         item.ItemID,
				PurchaseLimit:  item.PurchaseLimit,
				PromotionPrice: item.Price,
				Stock:          item.Stock,
			})

		case len(enabled) == 0:
			// 既无启用变体也无商品价格：整条丢弃
			continue

		default:
			// 真实变体：只收价格为正的变体
			models := make([]FlashSaleModelPayload, 0, len(enabled))
			for _, m := range enabled {
				if m.Price <= 0 {
					continue
				}
				models = append(models, FlashSaleModelPayload{
					ModelID:        m.ModelID,
					PromotionPrice: m.Price,
					Stock:          m.Stock,
				})
			}
			candidates = append(candidates, FlashSaleItemPayload{
				ItemID:        item.ItemID,
				PurchaseLimit: item.PurchaseLimit,
				Models:        models,
			})
		}
	}

	// 终检：平铺价格 ≤0、变体数组为空、或任一变体价格 ≤0 的条目全部剔除
	result := make([]FlashSaleItemPayload, 0, len(candidates))
	for _, c := range candidates {
		if len(c.Models) == 0 {
			if c.PromotionPrice <= 0 {
				continue
			}
			result = append(result, c)
			continue
		}

		valid := true
		for _, m := range c.Models {
			if m.PromotionPrice <= 0 {
				valid = false
				break
			}
		}
		if valid {
			result = append(result, c)
		}
	}
	return result
}

func enabledModels(models []TemplateModel) []TemplateModel {
	out := make([]TemplateModel, 0, len(models))
	for _, m := range models {
		if m.Status == 1 {
			out = append(out, m)
		}
	}
	return out
}
